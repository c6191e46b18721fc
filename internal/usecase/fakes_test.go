package usecase

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
)

// bagOfWordsEmbedder hashes each word into a fixed number of buckets. Equal
// texts get equal vectors and shared vocabulary raises similarity.
type bagOfWordsEmbedder struct {
	mu        sync.Mutex
	dimension int
	calls     [][]string
	err       error
	failAfter int // fail every call after this many successful ones, 0 = never
	override  map[string][]float32
}

func newBagOfWordsEmbedder() *bagOfWordsEmbedder {
	return &bagOfWordsEmbedder{dimension: 64}
}

func (f *bagOfWordsEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]string(nil), texts...))
	if f.err != nil && (f.failAfter == 0 || len(f.calls) > f.failAfter) {
		return nil, f.err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.override[text]; ok {
			out[i] = v
			continue
		}
		vec := make([]float32, f.dimension)
		for _, word := range strings.Fields(text) {
			h := fnv.New32a()
			h.Write([]byte(word))
			vec[h.Sum32()%uint32(f.dimension)]++
		}
		out[i] = vec
	}
	return out, nil
}

func (f *bagOfWordsEmbedder) ModelName() string { return "bag-of-words" }

func (f *bagOfWordsEmbedder) Ping(context.Context) error { return nil }

func (f *bagOfWordsEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

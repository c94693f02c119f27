package model

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"sort"
	"sync"
)

// ForestConfig holds configuration for the random forest.
type ForestConfig struct {
	NEstimators    int    `json:"n_estimators"`
	MaxDepth       int    `json:"max_depth"`
	MinSamplesLeaf int    `json:"min_samples_leaf"`
	Seed           uint64 `json:"seed"`
}

// DefaultForestConfig returns the forest defaults.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NEstimators:    100,
		MaxDepth:       0,
		MinSamplesLeaf: 1,
		Seed:           42,
	}
}

// ForestModel is a bagged ensemble of regression trees. Each tree is grown
// on a bootstrap sample drawn from its own seeded source, so fitting is
// deterministic for a given seed whatever the goroutine schedule.
type ForestModel struct {
	config   ForestConfig
	features []string
	trees    []tree
}

type forestState struct {
	Config   ForestConfig `json:"config"`
	Features []string     `json:"features"`
	Trees    []tree       `json:"trees"`
}

// node is a tree node stored in a flat slice. Feature < 0 marks a leaf.
type node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v"`
}

type tree struct {
	Nodes []node `json:"nodes"`
}

func (t tree) predict(row []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 || n.Feature >= len(row) {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// NewForestModel creates an unfitted forest.
func NewForestModel(cfg ForestConfig) *ForestModel {
	if cfg.NEstimators < 1 {
		cfg.NEstimators = 100
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = 1
	}
	if cfg.MaxDepth < 0 {
		cfg.MaxDepth = 0
	}
	return &ForestModel{config: cfg}
}

// Name returns the model name.
func (m *ForestModel) Name() string {
	return string(ModelTypeForest)
}

// Features returns the training features.
func (m *ForestModel) Features() []string {
	return slices.Clone(m.features)
}

// Trees returns the number of fitted trees.
func (m *ForestModel) Trees() int {
	return len(m.trees)
}

// Fit grows NEstimators trees in parallel.
func (m *ForestModel) Fit(features []string, X [][]float64, y []float64) error {
	if err := checkShape(features, X, y); err != nil {
		return err
	}

	trees := make([]tree, m.config.NEstimators)
	var wg sync.WaitGroup
	for i := range trees {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(m.config.Seed, uint64(i)))
			b := &builder{
				X:        X,
				y:        y,
				maxDepth: m.config.MaxDepth,
				minLeaf:  m.config.MinSamplesLeaf,
			}
			trees[i] = b.grow(bootstrap(rng, len(X)))
		}(i)
	}
	wg.Wait()

	m.features = slices.Clone(features)
	m.trees = trees
	return nil
}

// PredictRow averages the trees.
func (m *ForestModel) PredictRow(row []float64) float64 {
	if len(m.trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range m.trees {
		sum += t.predict(row)
	}
	return sum / float64(len(m.trees))
}

// Save serializes the model state to a writer.
func (m *ForestModel) Save(w io.Writer) error {
	if len(m.trees) == 0 {
		return ErrNotFitted
	}
	return json.NewEncoder(w).Encode(forestState{
		Config:   m.config,
		Features: m.features,
		Trees:    m.trees,
	})
}

// Load deserializes the model state from a reader.
func (m *ForestModel) Load(r io.Reader) error {
	var state forestState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return err
	}
	if len(state.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i, t := range state.Trees {
		if err := t.validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	m.config = state.Config
	m.features = state.Features
	m.trees = state.Trees
	return nil
}

// validate rejects trees whose child links would loop or go out of range.
func (t tree) validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Feature < 0 {
			continue
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children", i)
		}
	}
	return nil
}

func bootstrap(rng *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.IntN(n)
	}
	return idx
}

// builder grows one CART regression tree by variance reduction.
type builder struct {
	X        [][]float64
	y        []float64
	maxDepth int
	minLeaf  int
	nodes    []node
}

func (b *builder) grow(idx []int) tree {
	b.nodes = b.nodes[:0]
	b.split(idx, 0)
	return tree{Nodes: b.nodes}
}

// split appends the node for idx and its subtree, returning its position.
func (b *builder) split(idx []int, depth int) int {
	pos := len(b.nodes)
	b.nodes = append(b.nodes, node{Feature: -1, Value: b.mean(idx)})

	if len(idx) < 2*b.minLeaf || (b.maxDepth > 0 && depth >= b.maxDepth) {
		return pos
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return pos
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.split(left, depth+1)
	r := b.split(right, depth+1)
	b.nodes[pos] = node{Feature: feature, Threshold: threshold, Left: l, Right: r, Value: b.nodes[pos].Value}
	return pos
}

func (b *builder) mean(idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += b.y[i]
	}
	return sum / float64(len(idx))
}

// bestSplit scans every feature for the threshold that minimizes the summed
// squared error of both children.
func (b *builder) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	total, totalSq := 0.0, 0.0
	for _, i := range idx {
		total += b.y[i]
		totalSq += b.y[i] * b.y[i]
	}
	bestErr := totalSq - total*total/float64(n)
	const eps = 1e-12

	sorted := make([]int, n)
	for f := range b.X[idx[0]] {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool {
			return b.X[sorted[a]][f] < b.X[sorted[c]][f]
		})

		leftSum, leftSq := 0.0, 0.0
		for k := 0; k < n-1; k++ {
			v := b.y[sorted[k]]
			leftSum += v
			leftSq += v * v

			nl := k + 1
			nr := n - nl
			if nl < b.minLeaf || nr < b.minLeaf {
				continue
			}
			xk, xn := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			if xk == xn {
				continue
			}

			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			err := (leftSq - leftSum*leftSum/float64(nl)) + (rightSq - rightSum*rightSum/float64(nr))
			if err < bestErr-eps {
				bestErr = err
				feature = f
				threshold = (xk + xn) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// ABOUTME: Seeded random forest classifier (bagged CART trees, Gini impurity).
// ABOUTME: Probabilities are the mean of per-tree leaf class fractions.
package risk

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// ForestOptions configures the random forest.
type ForestOptions struct {
	Trees           int
	MaxDepth        int // 0 grows until leaves are pure
	MinSamplesSplit int
	MaxFeatures     int // 0 uses sqrt(#features)
	Seed            uint64
}

// DefaultForestOptions returns 100 unbounded trees seeded with 42.
func DefaultForestOptions() ForestOptions {
	return ForestOptions{
		Trees:           100,
		MinSamplesSplit: 2,
		Seed:            42,
	}
}

// RandomForest is an Estimator producing forestModel.
type RandomForest struct {
	opts ForestOptions
}

// NewRandomForest creates a random forest estimator.
func NewRandomForest(opts ForestOptions) *RandomForest {
	if opts.Trees < 1 {
		opts.Trees = 1
	}
	if opts.MinSamplesSplit < 2 {
		opts.MinSamplesSplit = 2
	}
	return &RandomForest{opts: opts}
}

type treeNode struct {
	leaf      bool
	proba     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.proba
}

type forestModel struct {
	trees []*treeNode
	width int
}

// Fit grows opts.Trees trees, each on a bootstrap sample.
func (f *RandomForest) Fit(features [][]float64, labels []bool) (Model, error) {
	width, err := checkShape(features, labels)
	if err != nil {
		return nil, fmt.Errorf("fit random forest: %w", err)
	}

	mtry := f.opts.MaxFeatures
	if mtry <= 0 || mtry > width {
		mtry = int(math.Max(1, math.Floor(math.Sqrt(float64(width)))))
	}

	model := &forestModel{width: width}
	n := len(features)
	for t := 0; t < f.opts.Trees; t++ {
		rng := rand.New(rand.NewPCG(f.opts.Seed, uint64(t)))
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.IntN(n)
		}
		g := &grower{
			x:        features,
			y:        labels,
			rng:      rng,
			mtry:     mtry,
			maxDepth: f.opts.MaxDepth,
			minSplit: f.opts.MinSamplesSplit,
		}
		model.trees = append(model.trees, g.grow(sample, 0))
	}
	return model, nil
}

// PredictProba averages the positive-class fraction over all trees.
func (m *forestModel) PredictProba(x []float64) (float64, error) {
	if len(x) != m.width {
		return 0, fmt.Errorf("got %d features, want %d", len(x), m.width)
	}
	var sum float64
	for _, t := range m.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(m.trees)), nil
}

type grower struct {
	x        [][]float64
	y        []bool
	rng      *rand.Rand
	mtry     int
	maxDepth int
	minSplit int
}

func (g *grower) grow(idx []int, depth int) *treeNode {
	pos := g.positives(idx)
	proba := float64(pos) / float64(len(idx))

	if pos == 0 || pos == len(idx) || len(idx) < g.minSplit || (g.maxDepth > 0 && depth >= g.maxDepth) {
		return &treeNode{leaf: true, proba: proba}
	}

	feature, threshold, ok := g.bestSplit(idx)
	if !ok {
		return &treeNode{leaf: true, proba: proba}
	}

	var left, right []int
	for _, i := range idx {
		if g.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      g.grow(left, depth+1),
		right:     g.grow(right, depth+1),
	}
}

// bestSplit draws mtry candidate features and picks the threshold with the
// lowest weighted Gini impurity. When none of the candidates can separate the
// node the remaining features are tried before giving up.
func (g *grower) bestSplit(idx []int) (int, float64, bool) {
	order := g.rng.Perm(len(g.x[0]))

	bestFeature, bestThreshold := -1, 0.0
	bestScore := math.Inf(1)
	for k, feature := range order {
		if k >= g.mtry && bestFeature >= 0 {
			break
		}
		threshold, score, ok := g.splitFeature(idx, feature)
		if ok && score < bestScore {
			bestFeature, bestThreshold, bestScore = feature, threshold, score
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func (g *grower) splitFeature(idx []int, feature int) (float64, float64, bool) {
	sorted := make([]int, len(idx))
	copy(sorted, idx)
	sort.SliceStable(sorted, func(a, b int) bool {
		return g.x[sorted[a]][feature] < g.x[sorted[b]][feature]
	})

	n := len(sorted)
	totalPos := g.positives(sorted)
	leftPos := 0
	bestScore := math.Inf(1)
	bestThreshold := 0.0
	found := false

	for i := 0; i < n-1; i++ {
		if g.y[sorted[i]] {
			leftPos++
		}
		lo := g.x[sorted[i]][feature]
		hi := g.x[sorted[i+1]][feature]
		if lo == hi {
			continue
		}

		nl := float64(i + 1)
		nr := float64(n - i - 1)
		score := (nl*gini(float64(leftPos), nl) + nr*gini(float64(totalPos-leftPos), nr)) / float64(n)
		if score < bestScore {
			bestScore = score
			bestThreshold = lo + (hi-lo)/2
			found = true
		}
	}
	return bestThreshold, bestScore, found
}

func (g *grower) positives(idx []int) int {
	pos := 0
	for _, i := range idx {
		if g.y[i] {
			pos++
		}
	}
	return pos
}

func gini(pos, n float64) float64 {
	if n == 0 {
		return 0
	}
	p := pos / n
	return 1 - p*p - (1-p)*(1-p)
}

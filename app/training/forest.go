package training

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"datalens/domain/model"

	"golang.org/x/sync/errgroup"
)

// ForestConfig holds random forest hyperparameters
type ForestConfig struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Seed            int64
}

// withDefaults fills unset hyperparameters
func (c ForestConfig) withDefaults() ForestConfig {
	if c.NumTrees <= 0 {
		c.NumTrees = 100
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 10
	}
	if c.MinSamplesSplit <= 0 {
		c.MinSamplesSplit = 2
	}
	if c.MinSamplesLeaf <= 0 {
		c.MinSamplesLeaf = 1
	}
	return c
}

func (c ForestConfig) tree() treeConfig {
	return treeConfig{
		maxDepth:        c.MaxDepth,
		minSamplesSplit: c.MinSamplesSplit,
		minSamplesLeaf:  c.MinSamplesLeaf,
	}
}

// TrainForest fits a bagged ensemble of regression trees. Each tree trains
// concurrently on its own bootstrap sample and a random sqrt-sized feature
// subset; tree i derives its generator from Seed+i so a fixed seed gives a
// reproducible forest regardless of scheduling.
func TrainForest(ctx context.Context, X [][]float64, y []float64, cfg ForestConfig) (model.ForestParams, error) {
	if err := checkTrainingData(X, len(y)); err != nil {
		return model.ForestParams{}, err
	}
	cfg = cfg.withDefaults()
	numFeatures := len(X[0])
	maxFeatures := sqrtFeatures(numFeatures)

	trees := make([]*model.TreeNode, cfg.NumTrees)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.NumTrees; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
			boot := bootstrapIndices(rng, len(X))
			features := randomFeatures(rng, numFeatures, maxFeatures)
			trees[i] = buildRegressionTree(X, y, boot, features, cfg.tree(), 0)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.ForestParams{}, fmt.Errorf("forest training: %w", err)
	}

	return model.ForestParams{
		NumTrees:       cfg.NumTrees,
		MaxDepth:       cfg.MaxDepth,
		MinSamplesLeaf: cfg.MinSamplesLeaf,
		MaxFeatures:    maxFeatures,
		Seed:           cfg.Seed,
		Trees:          trees,
	}, nil
}

// TrainForestClassifier fits a bagged ensemble of classification trees
func TrainForestClassifier(ctx context.Context, X [][]float64, labels []string, cfg ForestConfig) (model.ForestClassifierParams, error) {
	if err := checkTrainingData(X, len(labels)); err != nil {
		return model.ForestClassifierParams{}, err
	}
	cfg = cfg.withDefaults()
	numFeatures := len(X[0])
	maxFeatures := sqrtFeatures(numFeatures)
	classes := uniqueClasses(labels)
	if len(classes) < 2 {
		return model.ForestClassifierParams{}, fmt.Errorf("need at least 2 classes, got %d", len(classes))
	}

	trees := make([]*model.TreeNode, cfg.NumTrees)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.NumTrees; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
			boot := bootstrapIndices(rng, len(X))
			features := randomFeatures(rng, numFeatures, maxFeatures)
			trees[i] = buildClassificationTree(X, labels, boot, features, cfg.tree(), 0)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.ForestClassifierParams{}, fmt.Errorf("forest training: %w", err)
	}

	return model.ForestClassifierParams{
		NumTrees:       cfg.NumTrees,
		MaxDepth:       cfg.MaxDepth,
		MinSamplesLeaf: cfg.MinSamplesLeaf,
		MaxFeatures:    maxFeatures,
		Seed:           cfg.Seed,
		Classes:        classes,
		Trees:          trees,
	}, nil
}

func checkTrainingData(X [][]float64, targetLen int) error {
	if len(X) == 0 {
		return fmt.Errorf("empty training data")
	}
	if len(X) != targetLen {
		return fmt.Errorf("features and target must have same number of samples, got %d and %d", len(X), targetLen)
	}
	if len(X[0]) == 0 {
		return fmt.Errorf("no features")
	}
	return nil
}

// sqrtFeatures is the classic per-tree feature budget
func sqrtFeatures(n int) int {
	m := int(math.Sqrt(float64(n)))
	if m < 1 {
		m = 1
	}
	return m
}

// bootstrapIndices samples n row indices with replacement
func bootstrapIndices(rng *rand.Rand, n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = rng.Intn(n)
	}
	return indices
}

// randomFeatures shuffles the feature index space and keeps the first k
func randomFeatures(rng *rand.Rand, n, k int) []int {
	features := make([]int, n)
	for i := range features {
		features[i] = i
	}
	rng.Shuffle(n, func(i, j int) {
		features[i], features[j] = features[j], features[i]
	})
	return features[:k]
}

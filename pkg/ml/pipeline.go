package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// CategoricalFeature は1カラム分のワンホットエンコーダ定義です。
type CategoricalFeature struct {
	Column     string   `json:"column"`
	Categories []string `json:"categories"`
}

// TreeNode is one node of a regression tree. A node with Leaf set is
// terminal; otherwise the encoded feature at Split is compared against
// Threshold and evaluation continues at Yes (value < Threshold) or No.
type TreeNode struct {
	ID        int      `json:"nodeid"`
	Split     int      `json:"split"`
	Threshold float64  `json:"split_condition"`
	Yes       int      `json:"yes"`
	No        int      `json:"no"`
	Leaf      *float64 `json:"leaf,omitempty"`
}

// Tree は回帰木1本です。ノード0が根になります。
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// PipelineArtifact is the on-disk form of a Pipeline.
type PipelineArtifact struct {
	Name      string               `json:"name"`
	Version   string               `json:"version"`
	Features  []CategoricalFeature `json:"features"`
	BaseScore float64              `json:"base_score"`
	Trees     []Tree               `json:"trees"`
}

// Pipeline はワンホットエンコードと勾配ブースティング木をまとめた回帰モデルです。
type Pipeline struct {
	name      string
	version   string
	features  []CategoricalFeature
	offsets   []int
	lookup    []map[string]int
	width     int
	baseScore float64
	trees     []Tree
}

// LoadPipeline reads and validates a pipeline artifact from path.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline artifact: %w", err)
	}

	var artifact PipelineArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decode pipeline artifact %s: %w", path, err)
	}

	return NewPipeline(artifact)
}

// NewPipeline validates an artifact and builds the encoder lookups.
func NewPipeline(artifact PipelineArtifact) (*Pipeline, error) {
	if len(artifact.Features) == 0 {
		return nil, fmt.Errorf("pipeline %q declares no features", artifact.Name)
	}
	if len(artifact.Trees) == 0 {
		return nil, fmt.Errorf("pipeline %q has no trees", artifact.Name)
	}

	p := &Pipeline{
		name:      artifact.Name,
		version:   artifact.Version,
		features:  artifact.Features,
		offsets:   make([]int, len(artifact.Features)),
		lookup:    make([]map[string]int, len(artifact.Features)),
		baseScore: artifact.BaseScore,
		trees:     artifact.Trees,
	}

	seen := make(map[string]bool, len(artifact.Features))
	for i, feature := range artifact.Features {
		if feature.Column == "" {
			return nil, fmt.Errorf("feature %d has no column name", i)
		}
		if seen[feature.Column] {
			return nil, fmt.Errorf("feature column %q declared twice", feature.Column)
		}
		seen[feature.Column] = true

		p.offsets[i] = p.width
		p.lookup[i] = make(map[string]int, len(feature.Categories))
		for j, category := range feature.Categories {
			p.lookup[i][category] = j
		}
		p.width += len(feature.Categories)
	}

	for t, tree := range artifact.Trees {
		if err := validateTree(tree, p.width); err != nil {
			return nil, fmt.Errorf("tree %d: %w", t, err)
		}
	}

	return p, nil
}

func validateTree(tree Tree, width int) error {
	if len(tree.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, node := range tree.Nodes {
		if node.ID != i {
			return fmt.Errorf("node at position %d has id %d", i, node.ID)
		}
		if node.Leaf != nil {
			continue
		}
		if node.Split < 0 || node.Split >= width {
			return fmt.Errorf("node %d splits on feature %d outside [0,%d)", i, node.Split, width)
		}
		// 子ノードは常に親より後ろに置かれるため、循環は起こりません。
		for _, child := range []int{node.Yes, node.No} {
			if child <= i || child >= len(tree.Nodes) {
				return fmt.Errorf("node %d points to invalid child %d", i, child)
			}
		}
	}
	return nil
}

// Name returns the artifact name.
func (p *Pipeline) Name() string { return p.name }

// Version returns the artifact version.
func (p *Pipeline) Version() string { return p.version }

// Columns は学習時のカラム順を返します。
func (p *Pipeline) Columns() []string {
	columns := make([]string, len(p.features))
	for i, feature := range p.features {
		columns[i] = feature.Column
	}
	return columns
}

// Predict encodes every row of the frame and sums the tree outputs.
func (p *Pipeline) Predict(ctx context.Context, frame *Frame) ([]float64, error) {
	if frame == nil {
		return nil, fmt.Errorf("pipeline %q: nil frame", p.name)
	}

	present := make(map[string]bool)
	for _, column := range frame.Columns() {
		present[column] = true
	}
	for _, feature := range p.features {
		if !present[feature.Column] {
			return nil, fmt.Errorf("pipeline %q: columns are missing: {'%s'}", p.name, feature.Column)
		}
	}

	predictions := make([]float64, frame.Len())
	for row := 0; row < frame.Len(); row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		active := p.encode(frame, row)
		score := p.baseScore
		for _, tree := range p.trees {
			score += evaluate(tree, active)
		}
		predictions[row] = score
	}

	return predictions, nil
}

// encode は1行をワンホット表現に変換し、値が1の特徴量インデックスを返します。
// 未知のカテゴリは全て0としてエンコードされます。
func (p *Pipeline) encode(frame *Frame, row int) map[int]bool {
	active := make(map[int]bool, len(p.features))
	for i, feature := range p.features {
		value, _ := frame.Value(row, feature.Column)
		if j, ok := p.lookup[i][value]; ok {
			active[p.offsets[i]+j] = true
		}
	}
	return active
}

func evaluate(tree Tree, active map[int]bool) float64 {
	node := tree.Nodes[0]
	for node.Leaf == nil {
		value := 0.0
		if active[node.Split] {
			value = 1.0
		}
		if value < node.Threshold {
			node = tree.Nodes[node.Yes]
		} else {
			node = tree.Nodes[node.No]
		}
	}
	return *node.Leaf
}

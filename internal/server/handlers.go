package server

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ironsheep/color-match-tools/internal/batch"
	"github.com/ironsheep/color-match-tools/internal/colormatch"
	"github.com/ironsheep/color-match-tools/internal/config"
	"github.com/ironsheep/color-match-tools/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "color_average", "color_match").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Color Matching
	case "color_average":
		return s.handleColorAverage(args)
	case "color_match":
		return s.handleColorMatch(args)
	case "color_match_batch":
		return s.handleColorMatchBatch(args)

	// Settings
	case "config_get":
		return s.handleConfigGet(args)
	case "config_set":
		return s.handleConfigSet(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Color Matching Handlers ===

// regionArgs mirrors colormatch.Region in tool arguments.
type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

type colorAverageArgs struct {
	Path      string      `json:"path"`
	MaskColor string      `json:"mask_color"`
	Tolerance int         `json:"tolerance"`
	Region    *regionArgs `json:"region,omitempty"`
}

// AverageResult contains an image's average color.
type AverageResult struct {
	Average colormatch.Stat `json:"average"`
	Hex     string          `json:"hex"`
}

func (s *Server) handleColorAverage(args json.RawMessage) (interface{}, error) {
	var a colorAverageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	mask, err := config.ParseMaskColor(a.MaskColor, a.Tolerance)
	if err != nil {
		return nil, err
	}

	d, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	var region *colormatch.Region
	if a.Region != nil {
		region = &colormatch.Region{X1: a.Region.X1, Y1: a.Region.Y1, X2: a.Region.X2, Y2: a.Region.Y2}
	}

	stat, err := colormatch.Average(d.Image, mask, region)
	if err != nil {
		return nil, err
	}
	return &AverageResult{Average: stat, Hex: stat.Hex()}, nil
}

type colorMatchArgs struct {
	Reference  string `json:"reference"`
	Target     string `json:"target"`
	OutputDir  string `json:"output_dir"`
	MaskColor  string `json:"mask_color"`
	Tolerance  int    `json:"tolerance"`
	Preview    bool   `json:"preview"`
	PreviewDim int    `json:"preview_dim"`
}

// MatchResult reports one completed color match.
type MatchResult struct {
	Output           string           `json:"output"`
	ReferenceAverage colormatch.Stat  `json:"reference_average"`
	TargetAverage    colormatch.Stat  `json:"target_average"`
	Delta            colormatch.Delta `json:"delta"`
	Preview          *imaging.Preview `json:"preview,omitempty"`
}

func (s *Server) handleColorMatch(args json.RawMessage) (interface{}, error) {
	var a colorMatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputDir == "" {
		a.OutputDir = filepath.Dir(a.Target)
	}
	if a.PreviewDim == 0 {
		a.PreviewDim = 256
	}

	mask, err := config.ParseMaskColor(a.MaskColor, a.Tolerance)
	if err != nil {
		return nil, err
	}

	ref, err := s.cache.Load(a.Reference)
	if err != nil {
		return nil, err
	}
	tgt, err := s.cache.Load(a.Target)
	if err != nil {
		return nil, err
	}

	refAvg, err := colormatch.Average(ref.Image, mask, nil)
	if err != nil {
		return nil, fmt.Errorf("reference average: %w", err)
	}
	tgtAvg, err := colormatch.Average(tgt.Image, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("target average: %w", err)
	}

	matched, err := colormatch.Shift(tgt.Image, refAvg, tgtAvg)
	if err != nil {
		return nil, err
	}

	outPath := batch.OutputPath(a.OutputDir, a.Target)
	if err := imaging.Save(matched, outPath); err != nil {
		return nil, err
	}

	result := &MatchResult{
		Output:           outPath,
		ReferenceAverage: refAvg,
		TargetAverage:    tgtAvg,
		Delta:            colormatch.Diff(refAvg, tgtAvg),
	}
	if a.Preview {
		p, err := imaging.RenderPreview(matched, a.PreviewDim)
		if err != nil {
			return nil, err
		}
		result.Preview = p
	}
	return result, nil
}

type colorMatchBatchArgs struct {
	ReferenceDir string   `json:"reference_dir"`
	TargetDir    string   `json:"target_dir"`
	References   []string `json:"references"`
	Targets      []string `json:"targets"`
	OutputDir    string   `json:"output_dir"`
	MaskColor    string   `json:"mask_color"`
	Tolerance    int      `json:"tolerance"`
	Overwrite    bool     `json:"overwrite"`
}

func (s *Server) handleColorMatchBatch(args json.RawMessage) (interface{}, error) {
	var a colorMatchBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputDir == "" {
		return nil, fmt.Errorf("output_dir is required")
	}

	refs := a.References
	if a.ReferenceDir != "" {
		var err error
		if refs, err = batch.ListImages(a.ReferenceDir); err != nil {
			return nil, err
		}
	}
	tgts := a.Targets
	if a.TargetDir != "" {
		var err error
		if tgts, err = batch.ListImages(a.TargetDir); err != nil {
			return nil, err
		}
	}

	pairs, err := batch.MakePairs(refs, tgts)
	if err != nil {
		return nil, err
	}

	if !a.Overwrite {
		existing, err := batch.CountExisting(a.OutputDir)
		if err != nil {
			return nil, err
		}
		if existing > 0 {
			return nil, fmt.Errorf("%d existing output files in %s; pass overwrite=true to replace them",
				existing, a.OutputDir)
		}
	}

	mask, err := config.ParseMaskColor(a.MaskColor, a.Tolerance)
	if err != nil {
		return nil, err
	}

	return batch.Run(context.Background(), batch.Job{
		Pairs:     pairs,
		OutputDir: a.OutputDir,
		Mask:      mask,
	})
}

// === Settings Handlers ===

func (s *Server) handleConfigGet(json.RawMessage) (interface{}, error) {
	settings, err := config.Load(s.configPath)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

type configSetArgs struct {
	LastRefDir    *string `json:"last_ref_dir,omitempty"`
	LastTargetDir *string `json:"last_tgt_dir,omitempty"`
	LastOutDir    *string `json:"last_out_dir,omitempty"`
	MaskColor     *string `json:"mask_color,omitempty"`
	MaskTolerance *int    `json:"mask_tolerance,omitempty"`
}

func (s *Server) handleConfigSet(args json.RawMessage) (interface{}, error) {
	var a configSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	settings, err := config.Load(s.configPath)
	if err != nil {
		return nil, err
	}

	if a.LastRefDir != nil {
		settings.LastRefDir = *a.LastRefDir
	}
	if a.LastTargetDir != nil {
		settings.LastTargetDir = *a.LastTargetDir
	}
	if a.LastOutDir != nil {
		settings.LastOutDir = *a.LastOutDir
	}
	if a.MaskColor != nil {
		if _, err := config.ParseMaskColor(*a.MaskColor, 0); err != nil {
			return nil, err
		}
		settings.MaskColor = *a.MaskColor
	}
	if a.MaskTolerance != nil {
		settings.MaskTolerance = *a.MaskTolerance
	}

	if err := settings.Save(s.configPath); err != nil {
		return nil, err
	}
	return settings, nil
}

package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"vectorize_image",
		"image_info",
		"generate_logo",
		"generate_image",
		"generate_svg",
		"describe_product",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}

			if schemaType := tool.InputSchema["type"]; schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || len(props) == 0 {
				t.Fatal("InputSchema properties missing")
			}

			// Every required parameter must be declared.
			if required, ok := tool.InputSchema["required"].([]string); ok {
				for _, r := range required {
					if _, ok := props[r]; !ok {
						t.Errorf("required parameter %q has no property", r)
					}
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredPrompt(t *testing.T) {
	toolsRequiringPrompt := []string{"generate_logo", "generate_image", "generate_svg"}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, name := range toolsRequiringPrompt {
		t.Run(name, func(t *testing.T) {
			required, ok := toolMap[name].InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			hasPrompt := false
			for _, r := range required {
				if r == "prompt" {
					hasPrompt = true
				}
			}
			if !hasPrompt {
				t.Error("Tool should require 'prompt' parameter")
			}
		})
	}
}

func TestToolDefinitions_TraceOptions(t *testing.T) {
	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, name := range []string{"vectorize_image", "generate_svg"} {
		props := toolMap[name].InputSchema["properties"].(map[string]interface{})
		for _, opt := range []string{"turd_size", "polarity", "threshold", "alpha_max", "color", "background", "stroke_width", "width", "height"} {
			if _, ok := props[opt]; !ok {
				t.Errorf("%s: missing option %q", name, opt)
			}
		}
	}

	polarity := toolMap["vectorize_image"].InputSchema["properties"].(map[string]interface{})["polarity"].(map[string]interface{})
	enum, ok := polarity["enum"].([]string)
	if !ok || len(enum) != 2 {
		t.Errorf("polarity enum: got %v", polarity["enum"])
	}
}

func TestMerge(t *testing.T) {
	a := map[string]interface{}{"x": 1, "y": 2}
	b := map[string]interface{}{"y": 3}
	got := merge(a, b)

	if len(got) != 2 || got["x"] != 1 || got["y"] != 3 {
		t.Errorf("merge: got %v", got)
	}
	if a["y"] != 2 {
		t.Error("merge modified its input")
	}
}

package comfyui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"pyro/image"
	"pyro/logger"
	"pyro/settings"

	"github.com/richinsley/comfy2go/client"
	"github.com/schollz/progressbar/v3"
)

// Generator submits workflows to a running ComfyUI instance and saves
// the resulting image. Which nodes receive the prompt, seed and
// dimensions is configured per workflow, matched by node type or title
// within the "API" group of the graph.
type Generator struct {
	config settings.ComfyUiConfig
}

func NewGenerator(config settings.ComfyUiConfig) *Generator {
	return &Generator{config: config}
}

func (g *Generator) Generate(ctx context.Context, req image.Request) (*image.Result, error) {
	if g.config.FreeVramOnDone {
		defer func() {
			if err := g.FreeVram(); err != nil {
				logger.Error("Error freeing VRAM", "error", err)
			}
		}()
	}

	c := client.NewComfyClient(g.config.Url, g.config.Port, nil)
	if !c.IsInitialized() {
		if err := c.Init(); err != nil {
			return nil, fmt.Errorf("error initializing client: %w", err)
		}
	}

	graph, _, err := c.NewGraphFromJsonFile(g.config.WorkflowFile)
	if err != nil {
		return nil, fmt.Errorf("error loading graph JSON: %w", err)
	}

	// Widget updates keyed by node type or title, then widget index.
	widgetUpdates := make(map[string]map[int]interface{})
	setWidget := func(node string, index int, value interface{}) {
		if node == "" {
			return
		}
		if _, ok := widgetUpdates[node]; !ok {
			widgetUpdates[node] = make(map[int]interface{})
		}
		widgetUpdates[node][index] = value
	}

	setWidget(g.config.PromptNode, g.config.PromptWidget, req.Prompt)
	setWidget(g.config.SeedNode, g.config.SeedWidget, int64(req.Seed))
	setWidget(g.config.SizeNode, g.config.WidthWidget, int64(req.Width))
	setWidget(g.config.SizeNode, g.config.HeightWidget, int64(req.Height))

	apiNodes := graph.GetNodesInGroup(graph.GetGroupWithTitle("API"))
	for _, node := range apiNodes {
		updates, ok := widgetUpdates[node.Type]
		if !ok {
			updates = widgetUpdates[node.Title]
		}
		if updates == nil {
			continue
		}
		values, ok := node.WidgetValues.([]interface{})
		if !ok {
			continue
		}
		for widgetIndex, value := range updates {
			if widgetIndex < len(values) {
				values[widgetIndex] = value
				logger.Debug("Set widget value", "widget", widgetIndex, "node", node.Title, "type", node.Type, "value", value)
			}
		}
	}

	item, err := c.QueuePrompt(graph)
	if err != nil {
		return nil, fmt.Errorf("failed to queue prompt: %w", err)
	}

	var bar *progressbar.ProgressBar
	var currentNodeTitle string
	for continueLoop := true; continueLoop; {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		msg := <-item.Messages
		switch msg.Type {
		case "started":
			qm := msg.ToPromptMessageStarted()
			logger.Service("comfyui").Info("Start executing prompt", "prompt_id", qm.PromptID)
		case "executing":
			bar = nil
			qm := msg.ToPromptMessageExecuting()
			currentNodeTitle = qm.Title
			logger.Debug("Executing node", "node_id", qm.NodeID)
		case "progress":
			qm := msg.ToPromptMessageProgress()
			if bar == nil {
				bar = progressbar.Default(int64(qm.Max), currentNodeTitle)
			}
			bar.Set(qm.Value)
		case "stopped":
			qm := msg.ToPromptMessageStopped()
			if qm.Exception != nil {
				return nil, fmt.Errorf("execution stopped with exception: %s: %s", qm.Exception.ExceptionType, qm.Exception.ExceptionMessage)
			}
			continueLoop = false
		case "data":
			qm := msg.ToPromptMessageData()
			for k, v := range qm.Data {
				if k != "images" {
					continue
				}
				for _, output := range v {
					imgData, err := c.GetImage(output)
					if err != nil {
						return nil, fmt.Errorf("failed to get image: %w", err)
					}
					if err := os.WriteFile(req.OutputPath, *imgData, 0o644); err != nil {
						return nil, fmt.Errorf("failed to write image: %w", err)
					}
					return &image.Result{Path: req.OutputPath, Seed: req.Seed}, nil
				}
			}
		}
	}

	return nil, errors.New("no output image received")
}

// FreeVram asks ComfyUI to unload its models and release accelerator
// memory. ComfyUI manages its own model residency, so this is the only
// lever available from outside.
func (g *Generator) FreeVram() error {
	url := fmt.Sprintf("http://%s:%d/free", g.config.Url, g.config.Port)
	req, err := http.NewRequest("POST", url, nil)
	if err != nil {
		return fmt.Errorf("could not create free request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	body := `{"unload_models": true, "free_memory": true}`
	req.Body = io.NopCloser(strings.NewReader(body))
	req.ContentLength = int64(len(body))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send free request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("free request failed with status: %s", resp.Status)
	}

	logger.Service("comfyui").Info("Freed VRAM")
	return nil
}

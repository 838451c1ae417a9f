package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"pyro/accel"
	"pyro/helpers"
	"pyro/history"
	"pyro/image/comfyui"
	"pyro/logger"
	"pyro/session"
	"pyro/vars"
)

type shell struct {
	session *session.Session
	store   *vars.Store
	history *history.Store
	manager *accel.Manager     // nil when both backends are remote
	comfy   *comfyui.Generator // nil unless the image backend is ComfyUI
}

func (s *shell) run(ctx context.Context) {
	fmt.Println("pyro interactive prompt")
	fmt.Println("Type a prompt to generate an image, or /help for commands.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(">>> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if s.command(ctx, input) {
				return
			}
			continue
		}

		results, err := s.session.Run(ctx, input)
		if err != nil {
			logger.Error("Generation failed", "error", err)
			continue
		}
		for _, result := range results {
			fmt.Printf("Saved %s (seed %d)\n", result.Path, result.Seed)
		}
		fmt.Println()
	}
}

// command handles a slash command and reports whether to quit.
func (s *shell) command(ctx context.Context, input string) bool {
	parts := strings.SplitN(input, " ", 2)
	cmd := strings.ToLower(parts[0])
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/quit", "/q", "/exit":
		fmt.Println("Goodbye!")
		return true
	case "/help":
		s.printHelp()
	case "/vars":
		s.printVars()
	case "/enhance":
		s.enhance(ctx, args)
	case "/seed":
		s.setSeed(args)
	case "/size":
		s.setSize(args)
	case "/gpu":
		s.printGpuStatus(ctx)
	case "/unload":
		s.unload()
	case "/history":
		s.printHistory(args)
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		fmt.Println("Type /help for available commands")
	}
	return false
}

func (s *shell) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /help             Show this help")
	fmt.Println("  /vars             List prompt variables")
	fmt.Println("  /enhance <prompt> Enhance a prompt without generating")
	fmt.Println("  /seed <number>    Pin the seed for the next generation")
	fmt.Println("  /size <WxH>       Set output size (e.g. /size 1216x832)")
	fmt.Println("  /gpu              Show accelerator memory status")
	fmt.Println("  /unload           Unload models to free accelerator memory")
	fmt.Println("  /history [n]      Show recent generations")
	fmt.Println("  /quit             Exit")
	fmt.Println()
	fmt.Println("Prompts can use __variable__ placeholders and __variable:N__ for a fixed value.")
	fmt.Println("Append '> instruction' to enhance, and ': x10,h832,w1216' for batch parameters.")
}

func (s *shell) printVars() {
	variables := s.store.Load()
	if len(variables) == 0 {
		fmt.Println("No prompt variables found")
		return
	}
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		variable := variables[name]
		preview := variable.Values
		suffix := ""
		if len(preview) > 5 {
			suffix = fmt.Sprintf("... (+%d more)", len(preview)-5)
			preview = preview[:5]
		}
		fmt.Printf("  %s: %s%s\n", name, strings.Join(preview, ", "), suffix)
	}
}

func (s *shell) enhance(ctx context.Context, args string) {
	if args == "" {
		fmt.Println("Usage: /enhance <prompt>")
		return
	}
	if s.session.Enhancer == nil {
		fmt.Println("No text backend configured")
		return
	}
	enhanced, err := s.session.Enhancer.Enhance(ctx, args, "")
	if err != nil {
		logger.Error("Enhancement failed", "error", err)
		return
	}
	fmt.Println(enhanced)
}

func (s *shell) setSeed(args string) {
	if args == "" {
		s.session.ClearSeed()
		fmt.Println("Seed reset to random")
		return
	}
	seed, err := strconv.ParseUint(args, 10, 32)
	if err != nil {
		fmt.Println("Invalid seed (must be a number)")
		return
	}
	s.session.PinSeed(uint32(seed))
	fmt.Printf("Seed set to: %d\n", seed)
}

func (s *shell) setSize(args string) {
	if args == "" {
		width, height := s.session.Size()
		fmt.Printf("Current size: %dx%d\n", width, height)
		return
	}
	parts := strings.Split(strings.ToLower(args), "x")
	if len(parts) != 2 {
		fmt.Println("Invalid size format. Use: /size 1024x1024")
		return
	}
	width, werr := strconv.Atoi(strings.TrimSpace(parts[0]))
	height, herr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if werr != nil || herr != nil {
		fmt.Println("Invalid size format. Use: /size 1024x1024")
		return
	}
	if err := s.session.SetSize(width, height); err != nil {
		fmt.Println("Invalid size:", err)
		return
	}
	fmt.Printf("Size set to: %dx%d\n", width, height)
}

func (s *shell) printGpuStatus(ctx context.Context) {
	if s.manager == nil {
		fmt.Println("Accelerator memory is managed by the image backend")
		return
	}
	status := s.manager.Status(ctx)
	if !status.Memory.Available {
		fmt.Println("No accelerator detected")
		return
	}
	fmt.Printf("GPU: %.1fGB free / %.1fGB total (occupant: %s)\n",
		status.Memory.FreeGB, status.Memory.TotalGB, status.Occupant)
}

func (s *shell) unload() {
	if s.manager != nil {
		s.manager.ReleaseAll()
	}
	if s.comfy != nil {
		if err := s.comfy.FreeVram(); err != nil {
			logger.Error("Error freeing VRAM", "error", err)
			return
		}
	}
	fmt.Println("Models unloaded")
}

func (s *shell) printHistory(args string) {
	limit := 10
	if args != "" {
		parsed, err := strconv.Atoi(args)
		if err != nil || parsed < 1 {
			fmt.Println("Usage: /history [count]")
			return
		}
		limit = parsed
	}
	records, err := s.history.List(limit)
	if err != nil {
		logger.Error("Failed to read history", "error", err)
		return
	}
	if len(records) == 0 {
		fmt.Println("No generations recorded yet")
		return
	}
	for _, rec := range records {
		fmt.Printf("  %s  seed %d  %dx%d  %s\n", helpers.Ago(rec.CreatedAt), rec.Seed, rec.Width, rec.Height, rec.ImagePath)
		fmt.Printf("    %s\n", rec.ResolvedPrompt)
	}
}

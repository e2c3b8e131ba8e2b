package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Traversal
	maxDepth     int
	excludeNames []string
	useGitignore bool

	// Filtering
	typeFilters []string

	// Content
	showContent  bool
	maxSizeBytes int64
	patternStr   string
	contextLines int
	wholeFile    bool
	highlight    bool

	// Sorting
	sortBy        string
	sortDirection string
	dirsFirst     bool
	noDirsFirst   bool

	// Output
	outputFormat    string
	outputFile      string
	pdfOutputFile   string
	copyToClipboard bool
	noColor         bool

	// Token counting
	countTokens    bool
	tokenizerModel string
)

// version is the application version, set via ldflags.
var version string = "dev"

var rootCmd = &cobra.Command{
	Use:   "canopy [DIRECTORY]",
	Short: "Canopy renders a filtered, sorted view of a directory tree.",
	Long: `Canopy maps a directory tree with filtering, sorting, and content display,
producing markdown or plain text suitable for terminals, files, or LLM context.

Examples:
  canopy ./src
      Show top-level entries in ./src

  canopy -d 3 -t ext:py -c
      Show Python files 3 levels deep and include file contents

  canopy --sort date -t group:code
      Show code files sorted by modification date

  canopy -c -p "TODO" --highlight
      Show files containing "TODO" and highlight the matches

  canopy -t ext:py -t group:web ./src
      Filter by more than one type (Python files OR files in the web group)

Type Filters:
  File Types:
    ext:EXTENSION   Files with a specific extension (e.g., ext:py)
    group:GROUP     Files from a named group (e.g., group:web)

  Special Types:
    binary, text, dir, socket, pipe, executable, symlink, device,
    hidden, empty, archive, all`,
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		run(root)
	},
}

func run(root string) {
	opts := Options{
		Root:         root,
		Depth:        maxDepth,
		Format:       outputFormat,
		Excludes:     excludeNames,
		ShowContent:  showContent,
		MaxSize:      maxSizeBytes,
		TypeSpecs:    typeFilters,
		Pattern:      patternStr,
		Context:      contextLines,
		WholeFile:    wholeFile,
		Highlight:    highlight,
		SortKey:      sortBy,
		Direction:    sortDirection,
		DirsFirst:    dirsFirst && !noDirsFirst,
		UseGitignore: useGitignore,
		CountTokens:  countTokens,
		TokenModel:   tokenizerModel,
	}

	engine, renderer, err := opts.Compile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Emphasis only makes sense on an interactive terminal; everything else
	// gets plain text.
	if noColor || outputFile != "" || pdfOutputFile != "" || copyToClipboard ||
		!isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	rootNode, diags, err := engine.Build(opts.Root)
	if err != nil {
		switch {
		case errors.Is(err, ErrRootNotFound):
			fmt.Fprintf(os.Stderr, "Error: '%s' does not exist.\n", opts.Root)
		case errors.Is(err, ErrRootNotADirectory):
			fmt.Fprintf(os.Stderr, "Error: '%s' is not a directory.\n", opts.Root)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	if opts.CountTokens {
		tk, err := newTokenizer(opts.TokenModel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: token counting disabled: %v\n", err)
			renderer.ShowTokens = false
			opts.CountTokens = false
		} else {
			defer tk.Close()
			countTreeTokens(rootNode, tk)
		}
	}

	var out strings.Builder
	writeHeader(&out, opts, rootNode)
	out.WriteString(renderer.Render(rootNode))
	writeFooter(&out, opts)
	writeSummary(&out, opts, summarize(rootNode), diags)
	finalOutput := out.String()

	for _, w := range diags.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", w.Path, w.Message)
	}

	switch {
	case pdfOutputFile != "":
		if err := generatePDF(finalOutput, pdfOutputFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating PDF: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Output saved to %s\n", pdfOutputFile)
	case outputFile != "":
		if err := os.WriteFile(outputFile, []byte(finalOutput), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to file %s: %v\n", outputFile, err)
			os.Exit(1)
		}
		fmt.Printf("Output saved to %s\n", outputFile)
	case copyToClipboard:
		if err := clipboard.WriteAll(finalOutput); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to clipboard: %v\n", err)
			fmt.Println("\n--- Output (clipboard failed) ---")
			fmt.Print(finalOutput)
		} else {
			fmt.Println("Output copied to clipboard.")
		}
	default:
		fmt.Print(finalOutput)
	}
}

func writeHeader(b *strings.Builder, opts Options, root *Node) {
	if opts.Format == "markdown" {
		fmt.Fprintf(b, "# \U0001F4C1 Project Source Tree: %s\n", root.Meta.Name)
	} else {
		fmt.Fprintf(b, "Project Source Tree: %s\n", root.Meta.Name)
	}
	fmt.Fprintf(b, "Generated on %s\n", time.Now().UTC().Format(time.RFC3339))
	if len(opts.TypeSpecs) > 0 {
		fmt.Fprintf(b, "Filters: %v\n", opts.TypeSpecs)
	}
	if opts.Pattern != "" {
		fmt.Fprintf(b, "Content Pattern: %s\n", opts.Pattern)
	}
	if opts.SortKey != "name" || opts.Direction != "asc" {
		fmt.Fprintf(b, "Sorting: %s (%s)\n", opts.SortKey, opts.Direction)
	}
	b.WriteString("\n")
}

func writeFooter(b *strings.Builder, opts Options) {
	b.WriteString("\n")
	if opts.Format == "markdown" {
		b.WriteString("_End of source tree_\n")
	} else {
		b.WriteString("End of source tree\n")
	}
}

func writeSummary(b *strings.Builder, opts Options, summary Summary, diags *Diagnostics) {
	b.WriteString("\n--- Summary ---\n")
	fmt.Fprintf(b, "Files: %d, Directories: %d\n", summary.TotalFiles, summary.TotalDirs)
	fmt.Fprintf(b, "Total size: %d bytes\n", summary.TotalSize)
	if opts.CountTokens {
		fmt.Fprintf(b, "Total tokens: %d\n", summary.TotalTokens)
	}
	if len(diags.Warnings) > 0 {
		fmt.Fprintf(b, "Entries not readable: %d\n", len(diags.Warnings))
	}
}

// summarize aggregates over the surviving tree, excluding the root itself.
func summarize(root *Node) Summary {
	var s Summary
	var visit func(n *Node)
	visit = func(n *Node) {
		for _, child := range n.Children {
			if child.Meta.Kind == KindDir {
				s.TotalDirs++
			} else {
				s.TotalFiles++
				s.TotalSize += child.Meta.Size
				s.TotalTokens += child.TokenCount
			}
			visit(child)
		}
	}
	visit(root)
	return s
}

func init() {
	cobra.OnInitialize(initConfig)

	// Traversal
	rootCmd.Flags().IntVarP(&maxDepth, "depth", "d", 1, "Maximum directory depth (0 = unlimited)")
	viper.BindPFlag("depth", rootCmd.Flags().Lookup("depth"))
	rootCmd.Flags().StringArrayVarP(&excludeNames, "exclude", "e", nil, "Exclude directories or files by name (can be used multiple times)")
	viper.BindPFlag("exclude", rootCmd.Flags().Lookup("exclude"))
	rootCmd.Flags().BoolVar(&useGitignore, "gitignore", false, "Respect the root's .gitignore file")
	viper.BindPFlag("gitignore", rootCmd.Flags().Lookup("gitignore"))

	// Filtering
	rootCmd.Flags().StringArrayVarP(&typeFilters, "type", "t", nil, "Filter results by type (can be used multiple times)")
	viper.BindPFlag("type", rootCmd.Flags().Lookup("type"))

	// Content
	rootCmd.Flags().BoolVarP(&showContent, "content", "c", false, "Show file contents in the tree")
	viper.BindPFlag("content", rootCmd.Flags().Lookup("content"))
	rootCmd.Flags().Int64VarP(&maxSizeBytes, "max-size", "s", 100000, "Maximum file size in bytes for content display")
	viper.BindPFlag("max_size", rootCmd.Flags().Lookup("max-size"))
	rootCmd.Flags().StringVarP(&patternStr, "pattern", "p", "", "Show only content matching a specific pattern")
	viper.BindPFlag("pattern", rootCmd.Flags().Lookup("pattern"))
	rootCmd.Flags().IntVar(&contextLines, "context", 0, "Show N lines of context around matches")
	viper.BindPFlag("context", rootCmd.Flags().Lookup("context"))
	rootCmd.Flags().BoolVar(&wholeFile, "whole-file", false, "Show the entire file if any line matches")
	viper.BindPFlag("whole_file", rootCmd.Flags().Lookup("whole-file"))
	rootCmd.Flags().BoolVar(&highlight, "highlight", false, "Highlight matching content")
	viper.BindPFlag("highlight", rootCmd.Flags().Lookup("highlight"))

	// Sorting
	rootCmd.Flags().StringVar(&sortBy, "sort", "name", "Sort by: name, date, size, type, ext")
	viper.BindPFlag("sort", rootCmd.Flags().Lookup("sort"))
	rootCmd.Flags().StringVar(&sortDirection, "direction", "asc", "Sort direction: asc or desc")
	viper.BindPFlag("direction", rootCmd.Flags().Lookup("direction"))
	rootCmd.Flags().BoolVar(&dirsFirst, "dirs-first", true, "Show directories first")
	viper.BindPFlag("dirs_first", rootCmd.Flags().Lookup("dirs-first"))
	rootCmd.Flags().BoolVar(&noDirsFirst, "no-dirs-first", false, "Don't sort directories separately")

	// Output
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "markdown", "Output format: markdown or text")
	viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	rootCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Save output to specified file")
	viper.BindPFlag("out", rootCmd.Flags().Lookup("out"))
	rootCmd.Flags().StringVar(&pdfOutputFile, "pdf", "", "Save output as PDF")
	viper.BindPFlag("pdf", rootCmd.Flags().Lookup("pdf"))
	rootCmd.Flags().BoolVar(&copyToClipboard, "clipboard", false, "Copy output to clipboard")
	viper.BindPFlag("clipboard", rootCmd.Flags().Lookup("clipboard"))
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored match highlighting")
	viper.BindPFlag("no_color", rootCmd.Flags().Lookup("no-color"))

	// Token counting
	rootCmd.Flags().BoolVar(&countTokens, "tokens", false, "Count LLM tokens for displayed content")
	viper.BindPFlag("tokens", rootCmd.Flags().Lookup("tokens"))
	rootCmd.Flags().StringVar(&tokenizerModel, "model", "", "Model name for the tokenizer (e.g., gpt-4o)")
	viper.BindPFlag("model", rootCmd.Flags().Lookup("model"))

	viper.SetDefault("depth", 1)
	viper.SetDefault("format", "markdown")
	viper.SetDefault("max_size", 100000)
	viper.SetDefault("sort", "name")
	viper.SetDefault("direction", "asc")
	viper.SetDefault("dirs_first", true)
	viper.SetDefault("context", 0)
}

// initConfig reads in the config file and CANOPY_* environment variables.
func initConfig() {
	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "canopy"))
	}
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CANOPY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
		}
	}

	// Config values become flag defaults: an explicit flag always wins.
	if !rootCmd.Flags().Changed("exclude") {
		if names := viper.GetStringSlice("exclude"); len(names) > 0 {
			excludeNames = names
		}
	}
	if !rootCmd.Flags().Changed("depth") {
		maxDepth = viper.GetInt("depth")
	}
	if !rootCmd.Flags().Changed("max-size") {
		maxSizeBytes = viper.GetInt64("max_size")
	}
	if !rootCmd.Flags().Changed("format") {
		outputFormat = viper.GetString("format")
	}
	if !rootCmd.Flags().Changed("sort") {
		sortBy = viper.GetString("sort")
	}
	if !rootCmd.Flags().Changed("direction") {
		sortDirection = viper.GetString("direction")
	}
}

func main() {
	rootCmd.Execute()
}

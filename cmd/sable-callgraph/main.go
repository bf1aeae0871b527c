// Command sable-callgraph builds and exports per-contract call graphs from
// serialized Sable compilation units.
//
// The target argument may be a unit file (.json), a directory containing
// unit files, or an https repository URL, which is shallow-cloned first:
//
//	sable-callgraph token.json
//	sable-callgraph -contract Token -dot token.dot build/units/
//	sable-callgraph -neo4j-uri bolt://localhost:7687 https://github.com/example/registry
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-git/go-git/v5"
	"golang.org/x/term"

	"github.com/sable-lang/sable/ast"
	"github.com/sable-lang/sable/callgraph"
	"github.com/sable-lang/sable/callgraphutil"
)

// Pastel / adaptive lipgloss styles. Users may disable color with NO_COLOR or
// SABLE_THEME=plain. Initialized via initStyles() in main.
var (
	styleBold     lipgloss.Style
	styleFaint    lipgloss.Style
	styleHeader   lipgloss.Style
	styleContract lipgloss.Style
	styleFunc     lipgloss.Style
	styleNumber   lipgloss.Style
	styleArrow    lipgloss.Style
	styleSuccess  lipgloss.Style
	styleError    lipgloss.Style
)

func initStyles() {
	plain := os.Getenv("NO_COLOR") != "" || strings.EqualFold(os.Getenv("SABLE_THEME"), "plain")
	if plain {
		reset := lipgloss.NewStyle()
		styleBold = lipgloss.NewStyle().Bold(true)
		styleFaint = reset
		styleHeader = lipgloss.NewStyle().Bold(true)
		styleContract = lipgloss.NewStyle().Bold(true)
		styleFunc = reset
		styleNumber = reset
		styleArrow = reset
		styleSuccess = reset
		styleError = reset
		return
	}

	pastelBlue := lipgloss.AdaptiveColor{Light: "#3366cc", Dark: "#8fb3ff"}
	pastelTeal := lipgloss.AdaptiveColor{Light: "#2b7a78", Dark: "#7ad1c4"}
	pastelLav := lipgloss.AdaptiveColor{Light: "#6d5fa6", Dark: "#b7a9ff"}
	pastelRose := lipgloss.AdaptiveColor{Light: "#ad5d7d", Dark: "#ffb3c9"}
	pastelGold := lipgloss.AdaptiveColor{Light: "#b58b00", Dark: "#ffd666"}
	pastelGreen := lipgloss.AdaptiveColor{Light: "#2f7d32", Dark: "#9ada9f"}
	pastelGray := lipgloss.AdaptiveColor{Light: "#6b6f76", Dark: "#9aa0aa"}
	pastelEdge := lipgloss.AdaptiveColor{Light: "#7a7f88", Dark: "#aab2bd"}

	styleBold = lipgloss.NewStyle().Bold(true)
	styleFaint = lipgloss.NewStyle().Foreground(pastelGray)
	styleHeader = lipgloss.NewStyle().Foreground(pastelBlue).Bold(true)
	styleContract = lipgloss.NewStyle().Foreground(pastelLav).Bold(true)
	styleFunc = lipgloss.NewStyle().Foreground(pastelTeal)
	styleNumber = lipgloss.NewStyle().Foreground(pastelGold).Bold(true)
	styleArrow = lipgloss.NewStyle().Foreground(pastelEdge)
	styleSuccess = lipgloss.NewStyle().Foreground(pastelGreen)
	styleError = lipgloss.NewStyle().Foreground(pastelRose).Bold(true)
}

// terminalWidth returns the width to wrap output to, falling back to 80 when
// stdout is not a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// highlightNode renders a node label: contract-qualified callables get the
// contract and member colored separately, sentinels stay faint.
func highlightNode(n callgraph.Node) string {
	return highlightLabel(n, n.String())
}

func highlightLabel(n callgraph.Node, label string) string {
	if n.Kind() != callgraph.KindCallable {
		return styleFaint.Render(label)
	}
	if dot := strings.Index(label, "."); dot != -1 {
		return styleContract.Render(label[:dot]) + "." + styleFunc.Render(label[dot+1:])
	}
	return styleFunc.Render(label)
}

// truncateLabel shortens label to at most avail runes, ending in an
// ellipsis. Truncation happens before styling, so ANSI escapes and
// multibyte runes are never cut mid-sequence.
func truncateLabel(label string, avail int) string {
	runes := []rune(label)
	if avail <= 0 || len(runes) <= avail {
		return label
	}
	if avail == 1 {
		return "…"
	}
	return string(runes[:avail-1]) + "…"
}

// printGraph writes a human-readable rendering of one contract's graph.
func printGraph(g *callgraph.ContractCallGraph) {
	width := terminalWidth()
	arrow := styleArrow.Render(" → ")

	fmt.Println(styleHeader.Render(g.Contract.Name))

	for _, caller := range g.Nodes() {
		fmt.Printf("  %s\n", highlightNode(caller))
		for _, callee := range g.Callees(caller) {
			avail := width - lipgloss.Width("    "+arrow)
			label := truncateLabel(callee.String(), avail)
			fmt.Println("    " + arrow + highlightLabel(callee, label))
		}
	}

	if created := g.CreatedContracts(); len(created) > 0 {
		names := make([]string, len(created))
		for i, c := range created {
			names[i] = styleContract.Render(c.Name)
		}
		fmt.Printf("  %s %s\n", styleFaint.Render("creates"), strings.Join(names, ", "))
	}

	entries := g.Callees(callgraph.RuntimeDispatch)
	fmt.Printf("  %s %s\n\n",
		styleNumber.Render(fmt.Sprintf("%d", len(entries))),
		styleFaint.Render("external entry points"))
}

// printPaths shows how the named callable is reached from each epoch root.
func printPaths(g *callgraph.ContractCallGraph, target string) {
	arrow := styleArrow.Render(" → ")
	for _, root := range []callgraph.Node{callgraph.CreationRoot, callgraph.RuntimeDispatch} {
		path := callgraphutil.PathSearchCallTo(g, root, target)
		if path.Empty() {
			fmt.Printf("  %s %s\n", styleFaint.Render("no path from"), styleFaint.Render(root.String()))
			continue
		}
		parts := make([]string, len(path))
		for i, n := range path {
			parts[i] = highlightNode(n)
		}
		fmt.Println("  " + strings.Join(parts, arrow))
	}
	fmt.Println()
}

// cloneRepository clones a repository and returns the directory it was cloned
// to using go-git under the hood, which is a pure Go implementation of Git.
func cloneRepository(ctx context.Context, repoURL string) (string, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("parse repository URL: %w", err)
	}

	dir := filepath.Join(os.TempDir(), "sable-callgraph", u.Host, strings.Trim(u.Path, "/"))

	// An existing clone is reused as-is.
	if _, err := os.Stat(dir); err == nil {
		if _, err := git.PlainOpen(dir); err != nil {
			return dir, fmt.Errorf("open existing clone: %w", err)
		}
		return dir, nil
	}

	_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          repoURL,
		Depth:        1,
		Tags:         git.NoTags,
		SingleBranch: true,
	})
	if err != nil {
		return dir, fmt.Errorf("clone %s: %w", repoURL, err)
	}
	return dir, nil
}

// collectUnitFiles resolves the target argument into unit file paths.
func collectUnitFiles(ctx context.Context, target string) ([]string, error) {
	if strings.HasPrefix(target, "https://") {
		dir, err := cloneRepository(ctx, target)
		if err != nil {
			return nil, err
		}
		target = dir
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	var files []string
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no unit files (.json) under %s", target)
	}
	return files, nil
}

// exportName derives an output path for one contract when a single export
// flag covers multiple contracts, e.g. graphs.dot becomes graphs.Token.dot.
func exportName(base, contract string, many bool) string {
	if !many {
		return base
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + contract + ext
}

func run(ctx context.Context) error {
	var (
		contractName string
		pathTo       string
		dotPath      string
		csvPath      string
		cosmoPath    string
		neo4jURI     string
		neo4jUser    string
		neo4jPass    string
		neo4jClean   bool
		verbose      bool
		veryVerbose  bool
	)

	flag.StringVar(&contractName, "contract", "", "only build the named contract")
	flag.StringVar(&pathTo, "path-to", "", "print a call path to the named callable, e.g. \"Token.transfer(address,uint256)\"")
	flag.StringVar(&dotPath, "dot", "", "write the graph in DOT format to the given file")
	flag.StringVar(&csvPath, "csv", "", "write the graph edges as CSV to the given file")
	flag.StringVar(&cosmoPath, "cosmograph", "", "write Cosmograph CSV to the given file (metadata goes next to it)")
	flag.StringVar(&neo4jURI, "neo4j-uri", "", "load the graph into Neo4j at the given bolt:// URI")
	flag.StringVar(&neo4jUser, "neo4j-user", "neo4j", "Neo4j user")
	flag.StringVar(&neo4jPass, "neo4j-pass", "", "Neo4j password")
	flag.BoolVar(&neo4jClean, "neo4j-clean", false, "remove previously loaded graph data first")
	flag.BoolVar(&verbose, "v", false, "verbose output")
	flag.BoolVar(&veryVerbose, "vv", false, "very verbose output")
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: sable-callgraph [flags] <unit.json | directory | https URL>")
	}

	level := callgraphutil.LogLevelInfo
	if verbose {
		level = callgraphutil.LogLevelDebug
	}
	if veryVerbose {
		level = callgraphutil.LogLevelTrace
	}
	logger := callgraphutil.NewLogger(level, os.Stderr)
	ctx = callgraphutil.WithLogger(ctx, logger)

	files, err := collectUnitFiles(ctx, flag.Arg(0))
	if err != nil {
		return err
	}
	logger.Debug("resolved %d unit file(s)", len(files))

	var graphs []*callgraph.ContractCallGraph
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		unit, err := ast.DecodeUnit(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		logger.Trace("decoded %s: %d contract(s)", file, len(unit.Contracts))

		for _, contract := range unit.Contracts {
			if contractName != "" && contract.Name != contractName {
				continue
			}
			graphs = append(graphs, callgraph.Create(contract))
			logger.Debug("built graph for %s", contract.Name)
		}
	}
	if len(graphs) == 0 {
		if contractName != "" {
			return fmt.Errorf("no contract named %q in %s", contractName, flag.Arg(0))
		}
		return fmt.Errorf("no contracts in %s", flag.Arg(0))
	}

	many := len(graphs) > 1
	for _, g := range graphs {
		printGraph(g)

		if pathTo != "" {
			printPaths(g, pathTo)
		}

		if dotPath != "" {
			if err := writeFile(exportName(dotPath, g.Contract.Name, many), func(w *os.File) error {
				return callgraphutil.WriteDOT(w, g)
			}); err != nil {
				return err
			}
		}
		if csvPath != "" {
			if err := writeFile(exportName(csvPath, g.Contract.Name, many), func(w *os.File) error {
				return callgraphutil.WriteCSV(w, g)
			}); err != nil {
				return err
			}
		}
		if cosmoPath != "" {
			path := exportName(cosmoPath, g.Contract.Name, many)
			metaPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".metadata.csv"
			if err := writeFile(path, func(w *os.File) error {
				return writeFile(metaPath, func(mw *os.File) error {
					return callgraphutil.WriteCosmograph(w, mw, g)
				})
			}); err != nil {
				return err
			}
		}
	}

	if neo4jURI != "" {
		loader, err := callgraphutil.NewNeo4jLoader(ctx, neo4jURI, neo4jUser, neo4jPass)
		if err != nil {
			return err
		}
		defer loader.Close()

		if neo4jClean {
			if err := loader.CleanGraph(); err != nil {
				return err
			}
		}
		if err := loader.CreateIndexes(); err != nil {
			return err
		}
		for _, g := range graphs {
			if err := loader.LoadGraph(g); err != nil {
				return fmt.Errorf("load %s: %w", g.Contract.Name, err)
			}
		}
		fmt.Println(styleSuccess.Render(fmt.Sprintf("loaded %d graph(s) into %s", len(graphs), neo4jURI)))
	}

	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	initStyles()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

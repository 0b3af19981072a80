// chlo_opt reads a chlo program in text format, verifies it, and optionally forms the rank specialization
// clusters of its functions.
//
// Usage:
//
//	chlo_opt [flags] <program.mlir | ->
//
// The (transformed) program is written to stdout or to the file given with -o, and the report tables to stderr.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/chlo"
	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagPolicy = flag.String("policy", types.BroadcastOptimistic.String(),
		fmt.Sprintf("Policy to combine dynamic and static extents in broadcasts, one of %v.", types.BroadcastPolicyStrings()))
	flagCluster        = flag.Bool("cluster", false, "Form the rank specialization clusters of every function.")
	flagMinClusterSize = flag.Int("min_cluster_size", 1, "Minimum number of statements of a cluster formed with -cluster.")
	flagMinimize       = flag.Bool("minimize", false, "Include the minimum broadcast shapes of the inputs of each cluster in the report.")
	flagReport         = flag.Bool("report", true, "Print report tables of the program and its clusters to stderr.")
	flagOutput         = flag.String("o", "", "Output file for the program. If empty, it is written to stdout.")
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row == lgtable.HeaderRow {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = evenRowStyle
			} else {
				s = oddRowStyle
			}
			if col == 0 {
				s = s.Align(lipgloss.Right)
			} else {
				s = s.Align(lipgloss.Left)
			}
			return
		})
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		klog.Errorf("Expected one program file to read (or \"-\" for stdin). See 'chlo_opt -help'.")
		os.Exit(1)
	}
	policy, err := types.BroadcastPolicyString(*flagPolicy)
	if err != nil {
		klog.Errorf("Invalid -policy=%q: %v", *flagPolicy, err)
		os.Exit(1)
	}

	var text []byte
	if args[0] == "-" {
		text = must.M1(io.ReadAll(os.Stdin))
	} else {
		text = must.M1(os.ReadFile(args[0]))
	}
	b, err := chlo.ParseWithPolicy(string(text), policy)
	if err != nil {
		klog.Fatalf("Failed to parse %q: %+v", args[0], err)
	}
	b.WithMinClusterSize(*flagMinClusterSize)
	if err := b.Verify(); err != nil {
		klog.Fatalf("Program %q failed verification: %v", args[0], err)
	}

	clusterRows := analyze(b)
	if *flagCluster {
		for _, fn := range b.Functions() {
			must.M1(chlo.FormRankSpecializationClusters(fn))
		}
	}
	if *flagReport {
		report(b, clusterRows)
	}

	program := must.M1(b.Build())
	if *flagOutput == "" {
		must.M1(os.Stdout.Write(program))
		return
	}
	must.M(os.WriteFile(*flagOutput, program, 0644))
	klog.V(1).Infof("wrote %s to %q", humanize.Bytes(uint64(len(program))), *flagOutput)
}

// analyze finds the clusters of every function, before they are formed, and returns the rows of the clusters table.
func analyze(b *chlo.Builder) [][]string {
	var rows [][]string
	for _, fn := range b.Functions() {
		for i, cluster := range chlo.FindRankSpecializationClusters(fn) {
			ops := make([]string, len(cluster.Members))
			for j, member := range cluster.Members {
				ops[j] = strings.TrimPrefix(member.OpType.ToStableHLO(), "chlo.")
			}
			row := []string{
				fmt.Sprintf("@%s #%d", fn.Name, i),
				humanize.Comma(int64(len(cluster.Members))),
				strings.Join(ops, ", "),
				valuesString(cluster.Inputs),
				valuesString(cluster.Outputs),
			}
			if *flagMinimize {
				minimized, err := cluster.MinimizeInputShapes(b.BroadcastPolicy())
				if err != nil {
					row = append(row, "n/a")
				} else {
					row = append(row, shapesString(minimized))
				}
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func valuesString(values []*chlo.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%s: %s", v, v.Shape())
	}
	return strings.Join(parts, "\n")
}

func shapesString(list []shapes.Shape) string {
	parts := make([]string, len(list))
	for i, s := range list {
		parts[i] = s.String()
	}
	return strings.Join(parts, "\n")
}

func report(b *chlo.Builder, clusterRows [][]string) {
	fmt.Fprintln(os.Stderr, titleStyle.Render(fmt.Sprintf("Program @%s", b.Name())))
	table := newPlainTable(true)
	table.Headers("Function", "Inputs", "Outputs", "Statements")
	for _, fn := range b.Functions() {
		table.Row(
			"@"+fn.Name,
			humanize.Comma(int64(len(fn.Inputs))),
			humanize.Comma(int64(len(fn.Outputs))),
			humanize.Comma(int64(len(fn.Statements))),
		)
	}
	fmt.Fprintln(os.Stderr, table.Render())

	if len(clusterRows) == 0 {
		fmt.Fprintln(os.Stderr, "No rank specialization clusters found.")
		return
	}
	fmt.Fprintln(os.Stderr, titleStyle.Render("Rank specialization clusters"))
	table = newPlainTable(true)
	headers := []string{"Cluster", "Size", "Operations", "Inputs", "Outputs"}
	if *flagMinimize {
		headers = append(headers, "Minimized inputs")
	}
	table.Headers(headers...)
	for _, row := range clusterRows {
		table.Row(row...)
	}
	fmt.Fprintln(os.Stderr, table.Render())
}

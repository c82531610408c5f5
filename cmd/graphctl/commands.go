package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kgraph/domain/core/entities"
	"kgraph/domain/services"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statsCmd() *cobra.Command {
	var clusters bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show counts, density and clusters",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd.Context())
			if err != nil {
				return err
			}
			stats := store.Stats()
			if opts.json {
				return printJSON(stats)
			}

			banner("graph stats")
			field("Nodes", stats.NodeCount)
			field("Links", stats.LinkCount)
			field("Clusters", stats.ClusterCount)
			field("Density", strconv.FormatFloat(stats.Density, 'f', 4, 64))
			fmt.Println()

			rows := make([][]string, 0, len(stats.NodeTypeCounts))
			for _, t := range entities.AllNodeTypes() {
				if n := stats.NodeTypeCounts[t]; n > 0 {
					rows = append(rows, []string{string(t), strconv.Itoa(n)})
				}
			}
			table([]string{"TYPE", "NODES"}, rows)

			if clusters {
				fmt.Println()
				for i, c := range store.Clusters() {
					fmt.Printf("  %s %s\n", info.Sprintf("#%d", i+1), strings.Join(c, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clusters, "clusters", false, "list the members of every cluster")
	return cmd
}

func filterCmd() *cobra.Command {
	var (
		types  []string
		search string
	)

	cmd := &cobra.Command{
		Use:     "filter",
		Short:   "Show the visible subgraph for a type set and search text",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			active := services.AllNodeTypesSet()
			if cmd.Flags().Changed("types") {
				var err error
				if active, err = services.ParseNodeTypes(types); err != nil {
					return err
				}
			}

			store, err := loadStore(cmd.Context())
			if err != nil {
				return err
			}
			sub := services.Filter(store, services.FilterCriteria{ActiveTypes: active, SearchQuery: search})
			if opts.json {
				return printJSON(sub)
			}

			banner(fmt.Sprintf("%d of %d nodes, %d of %d links",
				len(sub.Nodes), store.NodeCount(), len(sub.Links), store.LinkCount()))

			rows := make([][]string, 0, len(sub.Nodes))
			for _, n := range sub.Nodes {
				rows = append(rows, []string{n.ID, string(n.Type), n.Name, string(n.Status)})
			}
			table([]string{"ID", "TYPE", "NAME", "STATUS"}, rows)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&types, "types", "t", nil, "node types to show (default all)")
	cmd.Flags().StringVarP(&search, "query", "q", "", "case-insensitive name filter")
	return cmd
}

func neighborsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "neighbors <node-id>",
		Short: "List the nodes one link away from a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd.Context())
			if err != nil {
				return err
			}
			hood := services.Neighbors(store, args[0])
			ids := hood.NeighborIDs()
			slices.Sort(ids)
			if opts.json {
				return printJSON(map[string]any{"focal_id": hood.FocalID, "neighbors": ids})
			}

			if !store.HasNode(args[0]) {
				warn.Printf("  %s is not in the graph\n", args[0])
				return nil
			}
			banner(fmt.Sprintf("%d neighbors, %d links", len(ids), len(hood.TouchingLinkIDs)))
			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				node, _ := store.Node(id)
				rows = append(rows, []string{id, string(node.Type), node.Name})
			}
			table([]string{"ID", "TYPE", "NAME"}, rows)
			return nil
		},
	}
}

func detailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detail <node-id>",
		Short: "Show a node with its incoming and outgoing connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd.Context())
			if err != nil {
				return err
			}
			selected := args[0]
			detail := services.Detail(store, selected)
			if detail.Node == nil {
				return fmt.Errorf("node %q not found", selected)
			}
			if opts.json {
				return printJSON(detail)
			}

			banner(detail.Node.Name)
			field("ID", detail.Node.ID)
			field("Type", detail.Node.Type)
			if detail.Node.HasStatus() {
				field("Status", detail.Node.Status)
			}
			field("Connections", detail.Total())
			fmt.Println()

			printConnections("Incoming", detail.Incoming, selected)
			fmt.Println()
			printConnections("Outgoing", detail.Outgoing, selected)
			return nil
		},
	}
}

func printConnections(title string, conns []services.Connection, selected string) {
	info.Printf("  %s (%d)\n", title, len(conns))
	rows := make([][]string, 0, len(conns))
	for _, c := range conns {
		rows = append(rows, []string{c.Label, c.DisplayName(selected), c.OtherID(selected)})
	}
	table([]string{"RELATIONSHIP", "NODE", "ID"}, rows)
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show what ingestion skipped or dropped",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd.Context())
			if err != nil {
				return err
			}
			report := store.Report()
			if opts.json {
				return printJSON(report)
			}

			banner("ingestion report")
			field("Raw nodes", report.RawNodes)
			field("Raw edges", report.RawEdges)
			field("Accepted nodes", report.AcceptedNodes)
			field("Accepted links", report.AcceptedLinks)
			fmt.Printf("  %s %s\n\n", statusIcon(report.Clean()), subtle.Sprint("clean export"))

			nodeRows := make([][]string, 0, len(report.SkippedNodes))
			for _, n := range report.SkippedNodes {
				nodeRows = append(nodeRows, []string{strconv.Itoa(n.Index), n.ID, string(n.Reason)})
			}
			info.Println("  Skipped nodes")
			table([]string{"INDEX", "ID", "REASON"}, nodeRows)
			fmt.Println()

			linkRows := make([][]string, 0, len(report.DroppedLinks))
			for _, l := range report.DroppedLinks {
				linkRows = append(linkRows, []string{strconv.Itoa(l.Index), l.Source, l.Target, l.Type, string(l.Reason)})
			}
			info.Println("  Dropped edges")
			table([]string{"INDEX", "SOURCE", "TARGET", "TYPE", "REASON"}, linkRows)
			return nil
		},
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
)

// versionsCmd is a debug utility: fetch a running instance's graph and
// print its releases in semantic-version order.
var versionsCmd = &cobra.Command{
	Use:   "versions [url]",
	Short: "Fetch a running graph-server's /v1/graph and list releases in semver order",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersions,
}

type wireNode struct {
	Version string `json:"version"`
	Payload string `json:"payload"`
}

type wireGraph struct {
	Nodes []wireNode `json:"nodes"`
}

func runVersions(cmd *cobra.Command, args []string) error {
	url := args[0]

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("error fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error: status %d when fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response from %s: %w", url, err)
	}

	var g wireGraph
	if err := json.Unmarshal(body, &g); err != nil {
		return fmt.Errorf("error parsing JSON from %s: %w", url, err)
	}

	type versioned struct {
		v       *semver.Version
		payload string
	}
	var versions []versioned
	for _, n := range g.Nodes {
		v, err := semver.NewVersion(n.Version)
		if err != nil {
			// Not every release need be strict semver; skip rather
			// than fail the whole listing.
			continue
		}
		versions = append(versions, versioned{v: v, payload: n.Payload})
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].v.Compare(versions[j].v) < 0
	})

	for _, v := range versions {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", v.v.String(), v.payload)
	}
	return nil
}

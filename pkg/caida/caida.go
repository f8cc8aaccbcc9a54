// Package caida reads AS-relationship datasets in the serial-2 as-rel2
// format: pipe-separated ASN pairs with a relationship code, plus comment
// headers naming the input clique and IXP route servers. Fetching and
// decompressing the dataset is the caller's business; this package only
// turns an already-local stream into the edge list the graph builder wants.
package caida

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
)

// ErrMalformedInput is returned when a dataset line cannot be parsed.
var ErrMalformedInput = errors.New("caida: malformed input")

// Relationship codes used by the serial-2 format.
const (
	relProviderCustomer = -1
	relPeerPeer         = 0
)

// Dataset is a parsed relationship file, ready to build a graph from.
type Dataset struct {
	Edges []asgraph.Edge
	Tier1 []asgraph.ASN
	IXPs  []asgraph.ASN
}

// ParseFile parses a serial-2 file from disk.
func ParseFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("caida: opening dataset: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse parses a serial-2 stream.
func Parse(r io.Reader) (*Dataset, error) {
	d := &Dataset{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if err := d.parseHeader(line); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, lineNo, err)
			}
			continue
		}
		if err := d.parseEdge(line); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("caida: reading dataset: %w", err)
	}
	if len(d.Edges) == 0 {
		return nil, fmt.Errorf("%w: no relationship records", ErrMalformedInput)
	}
	return d, nil
}

// parseHeader extracts the input clique and IXP lists; other comments are
// ignored.
func (d *Dataset) parseHeader(line string) error {
	body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	switch {
	case strings.HasPrefix(body, "input clique:"):
		asns, err := parseASNList(strings.TrimPrefix(body, "input clique:"))
		if err != nil {
			return err
		}
		d.Tier1 = asns
	case strings.HasPrefix(body, "IXP ASes:"):
		asns, err := parseASNList(strings.TrimPrefix(body, "IXP ASes:"))
		if err != nil {
			return err
		}
		d.IXPs = asns
	}
	return nil
}

func (d *Dataset) parseEdge(line string) error {
	fields := strings.Split(line, "|")
	if len(fields) < 3 {
		return fmt.Errorf("expected at least 3 pipe-separated fields, got %d", len(fields))
	}
	a, err := parseASN(fields[0])
	if err != nil {
		return err
	}
	b, err := parseASN(fields[1])
	if err != nil {
		return err
	}
	rel, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return fmt.Errorf("relationship code %q: %v", fields[2], err)
	}

	var kind asgraph.EdgeKind
	switch rel {
	case relProviderCustomer:
		kind = asgraph.EdgeProviderCustomer
	case relPeerPeer:
		kind = asgraph.EdgePeerPeer
	default:
		return fmt.Errorf("unknown relationship code %d", rel)
	}
	d.Edges = append(d.Edges, asgraph.Edge{A: a, B: b, Kind: kind})
	return nil
}

// BuildGraph constructs the topology graph from the dataset.
func (d *Dataset) BuildGraph() (*asgraph.Graph, error) {
	return asgraph.Build(d.Edges,
		asgraph.WithTier1(d.Tier1),
		asgraph.WithIXPs(d.IXPs))
}

func parseASNList(s string) ([]asgraph.ASN, error) {
	var out []asgraph.ASN
	for _, tok := range strings.Fields(s) {
		asn, err := parseASN(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, asn)
	}
	return out, nil
}

func parseASN(s string) (asgraph.ASN, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("ASN %q: %v", s, err)
	}
	return asgraph.ASN(n), nil
}

// Package graphio implements the three-sibling-file compressed graph
// format and the whitespace-tolerant ASCII arc-list format described as
// an external Graph Provider collaborator: gap-coded, zig-zag varint
// successor lists, LZ4-block compressed as one body per graph,
// alongside a plain key=value properties file. Grounded on the
// teacher's pkg/rbtree/lz4.go (delta-encode, then LZ4-compress a flat
// uint32 buffer), generalised from a fixed-width delta transform to
// variable-length gap-coded successor lists, since a graph's successor
// counts and id spans vary per node in a way a fixed-width array can't
// represent compactly.
package graphio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/hyperball/pkg/graphmodel"
	"github.com/Sumatoshi-tech/hyperball/pkg/hberrors"
)

const (
	graphExt      = ".graph"
	offsetsExt    = ".offsets"
	propertiesExt = ".properties"

	propGraphClass = "graphclass"
	propNodes      = "nodes"
	propArcs       = "arcs"

	graphClassValue = "graphio.CompressedGraph"

	flagRaw  = byte(0)
	flagLZ4  = byte(1)
	fileMode = 0o644
)

func wrapIOErr(err error) error {
	return fmt.Errorf("%w: %w", hberrors.ErrIOError, err)
}

// appendUvarint and appendVarint grow buf by the varint encoding of v.
// PutVarint's zig-zag mapping of signed deltas onto an unsigned varint
// is exactly the "zig-zag + varint" gap coding the format calls for;
// there is no third-party varint codec in the example pack, and
// encoding/binary's is the standard one real Go binary formats reach
// for (see DESIGN.md).
func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte

	n := binary.PutUvarint(tmp[:], v)

	return append(buf, tmp[:n]...)
}

func appendVarint(buf []byte, v int64) []byte {
	var tmp [binary.MaxVarintLen64]byte

	n := binary.PutVarint(tmp[:], v)

	return append(buf, tmp[:n]...)
}

func decodeUvarints(raw []byte) ([]uint64, error) {
	out := make([]uint64, 0, len(raw)/2)

	pos := 0
	for pos < len(raw) {
		v, n := binary.Uvarint(raw[pos:])
		if n <= 0 {
			return nil, fmt.Errorf("graphio: malformed varint at byte %d: %w", pos, hberrors.ErrIOError)
		}

		out = append(out, v)
		pos += n
	}

	return out, nil
}

// encodeBody gap-codes every node's sorted successor list (outdegree
// varint, then each gap as a zig-zag varint delta from the previous
// successor) into one flat buffer, alongside the byte offset each
// node's record starts at.
func encodeBody(provider graphmodel.Provider) (body []byte, offsets []byte) {
	n := provider.NumNodes()

	body = make([]byte, 0, provider.NumArcs()*2+n)
	offsets = make([]byte, 0, n*2)

	for v := int64(0); v < n; v++ {
		offsets = appendUvarint(offsets, uint64(len(body)))

		it := provider.Successors(v)

		succs := make([]int64, 0, provider.Outdegree(v))
		for s := it.NextLong(); s != graphmodel.EndOfSuccessors; s = it.NextLong() {
			succs = append(succs, s)
		}

		sort.Slice(succs, func(i, j int) bool { return succs[i] < succs[j] })

		body = appendUvarint(body, uint64(len(succs)))

		prev := int64(0)
		for _, s := range succs {
			body = appendVarint(body, s-prev)
			prev = s
		}
	}

	return body, offsets
}

// WriteCompressed writes provider's current edge set to the three
// sibling files basename+.graph/.offsets/.properties.
func WriteCompressed(provider graphmodel.Provider, basename string) error {
	body, offsets := encodeBody(provider)

	flag, payload, err := compressBody(body)
	if err != nil {
		return fmt.Errorf("graphio: compress %s: %w", basename+graphExt, err)
	}

	if err := writeGraphFile(basename+graphExt, flag, payload, len(body)); err != nil {
		return err
	}

	if err := os.WriteFile(basename+offsetsExt, offsets, fileMode); err != nil {
		return fmt.Errorf("graphio: write %s: %w", basename+offsetsExt, wrapIOErr(err))
	}

	props := map[string]string{
		propGraphClass: graphClassValue,
		propNodes:      strconv.FormatInt(provider.NumNodes(), 10),
		propArcs:       strconv.FormatInt(provider.NumArcs(), 10),
	}

	return writeProperties(basename+propertiesExt, props)
}

// compressBody LZ4-block-compresses body, falling back to storing it
// raw when the block is empty or LZ4 can't shrink it (CompressBlock
// returns 0 for incompressible input; the destination must then hold
// the source verbatim per the package's documented contract).
func compressBody(body []byte) (flag byte, payload []byte, err error) {
	if len(body) == 0 {
		return flagRaw, nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(body)))

	written, cerr := lz4.CompressBlock(body, dst, nil)
	if cerr != nil {
		return 0, nil, fmt.Errorf("%w", cerr)
	}

	if written == 0 {
		return flagRaw, body, nil
	}

	return flagLZ4, dst[:written], nil
}

// writeGraphFile writes a 1-byte compression flag, an 8-byte
// little-endian decompressed length, then payload.
func writeGraphFile(path string, flag byte, payload []byte, decompressedLen int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("graphio: create %s: %w", path, wrapIOErr(err))
	}
	defer f.Close()

	var header [9]byte

	header[0] = flag
	binary.LittleEndian.PutUint64(header[1:], uint64(decompressedLen))

	if _, err := f.Write(header[:]); err != nil {
		return fmt.Errorf("graphio: write %s: %w", path, wrapIOErr(err))
	}

	if _, err := f.Write(payload); err != nil {
		return fmt.Errorf("graphio: write %s: %w", path, wrapIOErr(err))
	}

	return nil
}

// CompressedGraph is a read-only graphmodel.Provider backed by a
// decompressed, in-memory gap-coded body plus a per-node offsets index.
type CompressedGraph struct {
	body       []byte
	offsets    []uint64
	numNodes   int64
	numArcs    int64
	properties map[string]string
}

// ReadCompressed loads basename+.graph/.offsets/.properties.
func ReadCompressed(basename string) (*CompressedGraph, error) {
	flag, payload, decompressedLen, err := readGraphFile(basename + graphExt)
	if err != nil {
		return nil, err
	}

	body, err := decompressBody(flag, payload, decompressedLen)
	if err != nil {
		return nil, fmt.Errorf("graphio: %s: %w", basename+graphExt, err)
	}

	offsetRaw, err := os.ReadFile(basename + offsetsExt)
	if err != nil {
		return nil, fmt.Errorf("graphio: read %s: %w", basename+offsetsExt, wrapIOErr(err))
	}

	offsets, err := decodeUvarints(offsetRaw)
	if err != nil {
		return nil, err
	}

	props, err := readProperties(basename + propertiesExt)
	if err != nil {
		return nil, err
	}

	nodes, err := parsePropertyInt(props, propNodes, basename+propertiesExt)
	if err != nil {
		return nil, err
	}

	arcs, err := parsePropertyInt(props, propArcs, basename+propertiesExt)
	if err != nil {
		return nil, err
	}

	return &CompressedGraph{
		body:       body,
		offsets:    offsets,
		numNodes:   nodes,
		numArcs:    arcs,
		properties: props,
	}, nil
}

func parsePropertyInt(props map[string]string, key, path string) (int64, error) {
	v, err := strconv.ParseInt(props[key], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("graphio: %s: invalid %s: %w", path, key, hberrors.ErrIOError)
	}

	return v, nil
}

func readGraphFile(path string) (flag byte, payload []byte, decompressedLen int, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("graphio: read %s: %w", path, wrapIOErr(err))
	}

	if len(raw) < len(([9]byte{})) {
		return 0, nil, 0, fmt.Errorf("graphio: %s: truncated header: %w", path, hberrors.ErrIOError)
	}

	flag = raw[0]
	decompressedLen = int(binary.LittleEndian.Uint64(raw[1:9]))

	return flag, raw[9:], decompressedLen, nil
}

func decompressBody(flag byte, payload []byte, decompressedLen int) ([]byte, error) {
	if flag == flagRaw {
		return payload, nil
	}

	body := make([]byte, decompressedLen)

	if _, err := lz4.UncompressBlock(payload, body); err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}

	return body, nil
}

// NumNodes satisfies graphmodel.Provider.
func (g *CompressedGraph) NumNodes() int64 { return g.numNodes }

// NumArcs satisfies graphmodel.Provider.
func (g *CompressedGraph) NumArcs() int64 { return g.numArcs }

// Properties returns the raw key=value pairs loaded from the
// .properties sibling file.
func (g *CompressedGraph) Properties() map[string]string { return g.properties }

func (g *CompressedGraph) decodeSuccessors(v int64) []int64 {
	if v < 0 || v >= int64(len(g.offsets)) {
		return nil
	}

	pos := int(g.offsets[v])

	count, n := binary.Uvarint(g.body[pos:])
	pos += n

	succs := make([]int64, 0, count)
	prev := int64(0)

	for i := uint64(0); i < count; i++ {
		delta, n := binary.Varint(g.body[pos:])
		pos += n
		prev += delta
		succs = append(succs, prev)
	}

	return succs
}

// Outdegree satisfies graphmodel.Provider.
func (g *CompressedGraph) Outdegree(v int64) int64 {
	if v < 0 || v >= int64(len(g.offsets)) {
		return 0
	}

	pos := int(g.offsets[v])
	count, _ := binary.Uvarint(g.body[pos:])

	return int64(count)
}

type compressedSuccessorIterator struct {
	succ []int64
	pos  int
}

func (it *compressedSuccessorIterator) NextLong() int64 {
	if it.pos >= len(it.succ) {
		return graphmodel.EndOfSuccessors
	}

	v := it.succ[it.pos]
	it.pos++

	return v
}

// Successors satisfies graphmodel.Provider.
func (g *CompressedGraph) Successors(v int64) graphmodel.SuccessorIterator {
	return &compressedSuccessorIterator{succ: g.decodeSuccessors(v)}
}

type compressedNodeIterator struct {
	g        *CompressedGraph
	cur      int64
	started  bool
	consumed bool
}

func (it *compressedNodeIterator) HasNext() bool {
	next := it.cur
	if it.started {
		next++
	}

	return next < it.g.numNodes
}

func (it *compressedNodeIterator) NextLong() (int64, error) {
	if it.started {
		it.cur++
	} else {
		it.started = true
	}

	if it.cur >= it.g.numNodes {
		return 0, fmt.Errorf("graphio: nodeIterator: advanced past end: %w", hberrors.ErrInvalidState)
	}

	it.consumed = false

	return it.cur, nil
}

func (it *compressedNodeIterator) Outdegree() (int64, error) {
	if !it.started {
		return 0, fmt.Errorf("graphio: nodeIterator: outdegree before first advance: %w", hberrors.ErrInvalidState)
	}

	return it.g.Outdegree(it.cur), nil
}

func (it *compressedNodeIterator) Successors() (graphmodel.SuccessorIterator, error) {
	if !it.started {
		return nil, fmt.Errorf("graphio: nodeIterator: successors before first advance: %w", hberrors.ErrInvalidState)
	}

	if it.consumed {
		return nil, fmt.Errorf("graphio: nodeIterator: successors already consumed at this position: %w", hberrors.ErrInvalidState)
	}

	it.consumed = true

	return it.g.Successors(it.cur), nil
}

// NodeIterator satisfies graphmodel.Provider.
func (g *CompressedGraph) NodeIterator(from int64) graphmodel.NodeIterator {
	return &compressedNodeIterator{g: g, cur: from - 1}
}

// IterateAllEdges satisfies graphmodel.Provider.
func (g *CompressedGraph) IterateAllEdges(visit func(graphmodel.Edge) bool) {
	for v := int64(0); v < g.numNodes; v++ {
		for _, s := range g.decodeSuccessors(v) {
			if !visit(graphmodel.Edge{From: v, To: s}) {
				return
			}
		}
	}
}

// Union reads the compressed graphs at path1 and path2, merges their
// edge sets, and writes the result to pathOut.
func Union(path1, path2, pathOut string) error {
	g1, err := ReadCompressed(path1)
	if err != nil {
		return err
	}

	g2, err := ReadCompressed(path2)
	if err != nil {
		return err
	}

	merged := graphmodel.NewMutableGraph()

	g1.IterateAllEdges(func(e graphmodel.Edge) bool {
		merged.AddEdge(e)

		return true
	})
	g2.IterateAllEdges(func(e graphmodel.Edge) bool {
		merged.AddEdge(e)

		return true
	})

	return WriteCompressed(merged, pathOut)
}

// Strip rewrites inBasename's .graph file at outBasename without LZ4
// block compression, copying the .offsets and .properties siblings
// verbatim; the result remains a valid ReadCompressed input.
func Strip(inBasename, outBasename string) error {
	g, err := ReadCompressed(inBasename)
	if err != nil {
		return err
	}

	if err := copyFile(inBasename+offsetsExt, outBasename+offsetsExt); err != nil {
		return err
	}

	if err := copyFile(inBasename+propertiesExt, outBasename+propertiesExt); err != nil {
		return err
	}

	return writeGraphFile(outBasename+graphExt, flagRaw, g.body, len(g.body))
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("graphio: read %s: %w", src, wrapIOErr(err))
	}

	if err := os.WriteFile(dst, data, fileMode); err != nil {
		return fmt.Errorf("graphio: write %s: %w", dst, wrapIOErr(err))
	}

	return nil
}

func writeProperties(path string, props map[string]string) error {
	var buf bytes.Buffer

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(&buf, "%s=%s\n", k, props[k])
	}

	if err := os.WriteFile(path, buf.Bytes(), fileMode); err != nil {
		return fmt.Errorf("graphio: write %s: %w", path, wrapIOErr(err))
	}

	return nil
}

func readProperties(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graphio: open %s: %w", path, wrapIOErr(err))
	}
	defer f.Close()

	props := make(map[string]string)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		props[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("graphio: read %s: %w", path, wrapIOErr(err))
	}

	return props, nil
}

// ReadArcList parses a whitespace-tolerant "u v" per line arc list into
// a fresh MutableGraph.
func ReadArcList(path string) (*graphmodel.MutableGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graphio: open %s: %w", path, wrapIOErr(err))
	}
	defer f.Close()

	g := graphmodel.NewMutableGraph()

	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("graphio: %s:%d: expected \"u v\", got %q: %w", path, lineNum, line, hberrors.ErrIOError)
		}

		u, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("graphio: %s:%d: invalid vertex %q: %w", path, lineNum, fields[0], wrapIOErr(err))
		}

		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("graphio: %s:%d: invalid vertex %q: %w", path, lineNum, fields[1], wrapIOErr(err))
		}

		g.AddEdge(graphmodel.Edge{From: u, To: v})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("graphio: read %s: %w", path, wrapIOErr(err))
	}

	return g, nil
}

// WriteArcList writes provider's edges as whitespace-separated "u v"
// lines, one per edge, in provider's IterateAllEdges order.
func WriteArcList(provider graphmodel.Provider, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("graphio: create %s: %w", path, wrapIOErr(err))
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	var writeErr error

	provider.IterateAllEdges(func(e graphmodel.Edge) bool {
		if _, err := fmt.Fprintf(w, "%d %d\n", e.From, e.To); err != nil {
			writeErr = err

			return false
		}

		return true
	})

	if writeErr != nil {
		return fmt.Errorf("graphio: write %s: %w", path, wrapIOErr(writeErr))
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("graphio: flush %s: %w", path, wrapIOErr(err))
	}

	return nil
}

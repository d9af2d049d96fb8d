package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hupe1980/scopemem"
	"github.com/hupe1980/scopemem/arena"
	"github.com/hupe1980/scopemem/hash"
	"github.com/hupe1980/scopemem/hashmap"
	"github.com/hupe1980/scopemem/list"
	"github.com/hupe1980/scopemem/multimap"
	"github.com/hupe1980/scopemem/resource"
	"github.com/hupe1980/scopemem/testutil"
	"github.com/hupe1980/scopemem/tree"
	"github.com/spf13/cobra"
)

// replayConfig describes one synthetic capture run.
type replayConfig struct {
	Files       int
	Packets     int
	Flows       int
	Seed        int64
	Rate        int64
	MemoryLimit int64
	PacketKind  string
	OffHeap     bool
}

var replayCfg = replayConfig{
	Files:   2,
	Packets: 1000,
	Flows:   64,
	Seed:    1,
}

func init() {
	cmd := newReplayCmd()
	f := cmd.Flags()
	f.IntVar(&replayCfg.Files, "files", replayCfg.Files, "Number of capture files")
	f.IntVar(&replayCfg.Packets, "packets", replayCfg.Packets, "Packets per file")
	f.IntVar(&replayCfg.Flows, "flows", replayCfg.Flows, "Distinct flows per file")
	f.Int64Var(&replayCfg.Seed, "seed", replayCfg.Seed, "Workload seed")
	f.Int64Var(&replayCfg.Rate, "rate", 0, "Packets per second (0 = unthrottled)")
	f.Int64Var(&replayCfg.MemoryLimit, "memory-limit", 0, "Memory budget of the block scopes in bytes (0 = unlimited)")
	f.StringVar(&replayCfg.PacketKind, "packet-kind", arena.KindBlockFast.String(), "Allocator kind of the packet scope")
	f.BoolVar(&replayCfg.OffHeap, "off-heap", false, "Back block scopes with anonymous mappings")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Replay a synthetic capture through the scopes",
		Long: `The replay command generates packets for a number of capture files and
processes each one inside a packet scope. Per-file state (conversations,
host names, reassembly ranges) lives in the file scope and is reset when
the file ends.

Example:
  scopestat replay --files 3 --packets 10000
  scopestat replay --packet-kind strict --json
  scopestat replay --rate 500 --memory-limit 8388608`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			res, err := runReplay(cmd.Context(), replayCfg, logger, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

// ReplayResult summarizes a replay run.
type ReplayResult struct {
	Files            int
	Packets          int
	Fields           int
	Conversations    int
	ReturningFlows   int
	Hosts            int
	FirstSightings   int
	ReassemblyHits   int
	PortLookups      int
	Duration         time.Duration
	Scopes           scopemem.ScopeStats
	Metrics          scopemem.BasicMetricsStats
	ProtocolsByCount map[string]int
}

type packet struct {
	frame   uint32
	proto   uint32
	srcHost string
	dstHost string
	srcPort uint32
	dstPort uint32
	offset  uint64
	length  uint64
	payload []byte
}

// record is the dissection result of one packet. It lives in the packet
// scope.
type record struct {
	frame  uint32
	host   []byte
	flow   string
	fields *list.List[string]
}

var protoNames = map[uint32]string{6: "tcp", 17: "udp", 132: "sctp"}

func runReplay(ctx context.Context, cfg replayConfig, logger *scopemem.Logger, diag io.Writer) (*ReplayResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Files <= 0 || cfg.Packets <= 0 || cfg.Flows <= 0 {
		return nil, fmt.Errorf("files, packets and flows must be positive")
	}
	packetKind, err := arena.ParseKind(cfg.PacketKind)
	if err != nil {
		return nil, err
	}

	metrics := &scopemem.BasicMetricsCollector{}
	opts := []scopemem.Option{
		scopemem.WithLogger(logger),
		scopemem.WithMetricsCollector(metrics),
		scopemem.WithMemoryLimit(cfg.MemoryLimit),
		scopemem.WithKinds(arena.KindBlock, arena.KindBlock, packetKind),
	}
	if cfg.OffHeap {
		opts = append(opts, scopemem.WithOffHeap())
	}
	s, err := scopemem.NewScopes(opts...)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	throttle := resource.NewController(resource.Config{EventsPerSec: cfg.Rate})
	rng := testutil.NewRNG(cfg.Seed)
	start := time.Now()

	res := &ReplayResult{ProtocolsByCount: make(map[string]int)}

	// Long-lived protocol table and per-file state that resets itself.
	protocols := hashmap.New[uint32, string](s.Global(), hash.Direct[uint32], hash.Equal[uint32])
	for num, name := range protoNames {
		protocols.Insert(num, name)
	}
	conversations := multimap.NewAutoreset[string, uint32](s.Global(), s.File(), hash.String, hash.Equal[string])
	hosts := tree.NewAutoreset[uint32](s.Global(), s.File())

	for f := range cfg.Files {
		if err := s.EnterFileScope(); err != nil {
			return nil, err
		}

		reassembly := tree.NewIntervalTree[uint32](s.File())
		ports := tree.New[string](s.File())

		for i := range cfg.Packets {
			if err := throttle.Wait(ctx, 1); err != nil {
				return nil, err
			}
			if err := s.EnterPacketScope(); err != nil {
				return nil, err
			}

			pkt := generatePacket(rng, uint32(i+1), cfg.Flows)
			rec := arena.New0[record](s.Packet())
			rec.frame = pkt.frame
			rec.host = arena.Strdup(s.Packet(), pkt.srcHost)
			rec.fields = dissect(s.Packet(), pkt, protocols)
			rec.flow = flowKey(s.Packet(), pkt)
			res.Fields += rec.fields.Count()

			if _, ok := conversations.LookupLE(rec.flow, rec.frame); ok {
				res.ReturningFlows++
			}
			conversations.Insert(rec.flow, rec.frame, rec.frame)

			if _, ok := hosts.LookupString(string(rec.host), tree.CaseInsensitive); !ok {
				res.FirstSightings++
			}
			hosts.InsertString(string(rec.host), rec.frame, tree.CaseInsensitive)
			hosts.InsertString(pkt.dstHost, pkt.frame, tree.CaseInsensitive)

			portKey := tree.Key{{pkt.proto}, {pkt.dstPort}}
			if _, ok := ports.LookupArrayLE(portKey); ok {
				res.PortLookups++
			}
			name, _ := protocols.Lookup(pkt.proto)
			ports.InsertArray(portKey, name)

			hits := reassembly.FindIntervals(s.Packet(), pkt.offset, pkt.offset+pkt.length-1)
			res.ReassemblyHits += hits.Count()
			reassembly.Insert(pkt.offset, pkt.offset+pkt.length-1, pkt.frame)

			if err := s.LeavePacketScope(); err != nil {
				return nil, err
			}
			res.Packets++
		}

		res.Conversations += conversations.Keys()
		res.Hosts += hosts.Count()
		protocols.Foreach(func(_ uint32, name string) {
			res.ProtocolsByCount[name] += countPorts(ports, name)
		})
		printVerbose(diag, "file %d: %d conversations, %d hosts, %d intervals\n",
			f, conversations.Keys(), hosts.Count(), reassembly.Count())

		if err := s.LeaveFileScope(); err != nil {
			return nil, err
		}
		res.Files++
	}

	res.Duration = time.Since(start)
	res.Scopes = s.Stats()
	res.Metrics = metrics.GetStats()
	s.LogStats(ctx)
	return res, nil
}

func generatePacket(rng *testutil.RNG, frame uint32, flows int) packet {
	protos := []uint32{6, 17, 132}
	flow := rng.Zipf(flows, 1.2)
	p := packet{
		frame:   frame,
		proto:   protos[flow%len(protos)],
		srcHost: fmt.Sprintf("Host-%d.example", flow),
		dstHost: fmt.Sprintf("host-%d.example", (flow+1)%flows),
		srcPort: 1024 + uint32(flow),
		dstPort: []uint32{53, 80, 443, 5060}[rng.Intn(4)],
		offset:  uint64(rng.Intn(1 << 16)),
		length:  uint64(1 + rng.Intn(1500)),
	}
	p.payload = make([]byte, 16+rng.Intn(48))
	rng.Bytes(p.payload)
	return p
}

// dissect splits a packet into protocol layers and fields, all allocated in
// the packet scope.
func dissect(a *arena.Allocator, pkt packet, protocols *hashmap.Map[uint32, string]) *list.List[string] {
	layers := list.NewStack[string](a)
	layers.Push("eth")
	layers.Push("ip")
	if name, ok := protocols.Lookup(pkt.proto); ok {
		layers.Push(name)
	}

	pending := list.NewQueue[[]byte](a)
	pending.Push(arena.Memdup(a, pkt.payload))

	fields := list.New[string](a)
	seen := hashmap.New[string, int](a, hash.String, hash.Equal[string])
	for layers.Count() > 0 {
		layer, _ := layers.Pop()
		fields.InsertSorted(layer, strings.Compare)
		seen.Insert(layer, fields.Count())
	}
	for pending.Count() > 0 {
		data, _ := pending.Pop()
		buf := arena.NewBufferLimited(a, 32, 128)
		_, _ = buf.Printf("data[%d]", len(data))
		fields.Append(buf.String())
	}
	return fields
}

func flowKey(a *arena.Allocator, pkt packet) string {
	buf := arena.NewBuffer(a, 64)
	_, _ = buf.Printf("%s:%d>%s:%d/%d", strings.ToLower(pkt.srcHost), pkt.srcPort, pkt.dstHost, pkt.dstPort, pkt.proto)
	return buf.String()
}

func countPorts(ports *tree.Tree[string], name string) int {
	n := 0
	ports.Foreach(func(_ []uint32, v string) bool {
		if v == name {
			n++
		}
		return false
	})
	return n
}

func printResult(w io.Writer, res *ReplayResult) {
	fmt.Fprintf(w, "Replayed %d packets in %d files (%s)\n", res.Packets, res.Files, res.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  fields:          %d\n", res.Fields)
	fmt.Fprintf(w, "  conversations:   %d (%d returning packets)\n", res.Conversations, res.ReturningFlows)
	fmt.Fprintf(w, "  hosts:           %d (%d first sightings)\n", res.Hosts, res.FirstSightings)
	fmt.Fprintf(w, "  reassembly hits: %d\n", res.ReassemblyHits)
	fmt.Fprintf(w, "  port lookups:    %d\n", res.PortLookups)
	fmt.Fprintln(w)

	for _, row := range []struct {
		name string
		st   arena.Stats
	}{
		{"global", res.Scopes.Global},
		{"file", res.Scopes.File},
		{"packet", res.Scopes.Packet},
	} {
		fmt.Fprintf(w, "%-7s kind=%-10s gen=%-6d allocs=%-8d free_alls=%-6d bytes=%d\n",
			row.name, row.st.Kind, row.st.Generation, row.st.Allocs, row.st.FreeAlls, row.st.BytesRequested)
	}
	fmt.Fprintf(w, "\nmemory peak: %d bytes, avg free-all: %s\n",
		res.Scopes.MemoryPeak, time.Duration(res.Metrics.FreeAllAvgNanos))
}

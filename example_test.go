package scopemem_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/scopemem"
	"github.com/hupe1980/scopemem/hash"
	"github.com/hupe1980/scopemem/multimap"
	"github.com/hupe1980/scopemem/tree"
)

// Example_scopes walks one file with two packets.
func Example_scopes() {
	s, err := scopemem.NewScopes()
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	if err := s.EnterFileScope(); err != nil {
		log.Fatal(err)
	}

	// Per-file conversation table.
	conv := tree.New[string](s.File())

	for i, proto := range []string{"tcp", "udp"} {
		if err := s.EnterPacketScope(); err != nil {
			log.Fatal(err)
		}
		conv.Insert(uint32(i+1), proto)
		if err := s.LeavePacketScope(); err != nil {
			log.Fatal(err)
		}
	}

	v, _ := conv.LookupLE(10)
	fmt.Println("conversations:", conv.Count(), "last:", v)

	if err := s.LeaveFileScope(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("in file scope:", s.InFileScope())
	// Output:
	// conversations: 2 last: udp
	// in file scope: false
}

// Example_intervalTree finds reassembly fragments that overlap a range.
func Example_intervalTree() {
	s, err := scopemem.NewScopes()
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	it := tree.NewIntervalTree[string](s.Global())
	it.Insert(0, 99, "frag-a")
	it.Insert(100, 199, "frag-b")
	it.Insert(150, 400, "frag-c")

	hits := it.FindIntervals(s.Global(), 120, 160)
	fmt.Println(hits.Slice())
	// Output: [frag-b frag-c]
}

// Example_multimap keeps the most recent value per key as of a frame number.
func Example_multimap() {
	s, err := scopemem.NewScopes()
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	mm := multimap.New[string, string](s.Global(), hash.String, hash.Equal[string])
	mm.Insert("port 80", 5, "http")
	mm.Insert("port 80", 10, "websocket")

	for _, frame := range []uint32{4, 7, 12} {
		v, ok := mm.LookupLE("port 80", frame)
		fmt.Println(frame, v, ok)
	}
	// Output:
	// 4  false
	// 7 http true
	// 12 websocket true
}

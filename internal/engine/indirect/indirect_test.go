package indirect

import (
	"errors"
	"testing"

	"github.com/Faultbox/xenotech/pkg/math"
)

func TestBufferAddGet(t *testing.T) {
	b := NewBuffer[BlockDraw]()
	h0 := b.Add(NewBlockDraw(Command{VertexCount: 6, InstanceCount: 1}, math.Vec3{X: 1}))
	h1 := b.Add(NewBlockDraw(Command{VertexCount: 12, InstanceCount: 1}, math.Vec3{Y: 2}))

	if h0 == h1 {
		t.Fatal("handles must be distinct")
	}
	if b.Count() != 2 {
		t.Errorf("Count: got %d, want 2", b.Count())
	}

	d, ok := b.Get(h1)
	if !ok || d.Cmd.VertexCount != 12 || d.Offset() != (math.Vec3{Y: 2}) {
		t.Errorf("Get(h1): got %+v, %v", d, ok)
	}
	if d.Position.W != 1 {
		t.Errorf("position W: got %f, want 1", d.Position.W)
	}
}

func TestBufferSwapRemove(t *testing.T) {
	b := NewBuffer[int]()
	hs := make([]Handle, 5)
	for i := range hs {
		hs[i] = b.Add(i * 10)
	}

	if err := b.Remove(hs[1]); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	// The last entry fills the hole
	want := []int{0, 40, 20, 30}
	got := b.Draws()
	if len(got) != len(want) {
		t.Fatalf("Draws: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Draws[%d]: got %d, want %d", i, got[i], want[i])
		}
	}

	// Surviving handles still resolve to their own values
	for i, h := range hs {
		v, ok := b.Get(h)
		if i == 1 {
			if ok {
				t.Error("removed handle still resolves")
			}
			continue
		}
		if !ok || v != i*10 {
			t.Errorf("Get(%d): got %d, %v, want %d", h, v, ok, i*10)
		}
	}
	if slot, _ := b.Slot(hs[4]); slot != 1 {
		t.Errorf("moved entry slot: got %d, want 1", slot)
	}

	if err := b.Remove(hs[1]); err == nil {
		t.Error("expected error removing twice")
	}
}

func TestBufferRemoveLastAndSet(t *testing.T) {
	b := NewBuffer[int]()
	h0 := b.Add(1)
	h1 := b.Add(2)

	if err := b.Remove(h1); err != nil {
		t.Fatal(err)
	}
	if b.Count() != 1 {
		t.Errorf("Count: got %d, want 1", b.Count())
	}
	if err := b.Set(h0, 7); err != nil {
		t.Fatal(err)
	}
	if v, _ := b.Get(h0); v != 7 {
		t.Errorf("Set: got %d, want 7", v)
	}
	if err := b.Set(h1, 9); err == nil {
		t.Error("expected error setting removed handle")
	}

	v0 := b.Version()
	b.Add(3)
	if b.Version() <= v0 {
		t.Error("version must grow on mutation")
	}
}

func TestPoolSection(t *testing.T) {
	p := NewPool[uint32](4)
	data := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	buckets := p.Section(data)
	if len(buckets) != 3 {
		t.Fatalf("Section: got %d buckets, want 3", len(buckets))
	}

	tests := []struct {
		bucket Bucket
		want   Command
	}{
		{buckets[0], Command{VertexCount: 4, InstanceCount: 1, FirstVertex: 0}},
		{buckets[1], Command{VertexCount: 4, InstanceCount: 1, FirstVertex: 4}},
		{buckets[2], Command{VertexCount: 2, InstanceCount: 1, FirstVertex: 8}},
	}
	for _, tt := range tests {
		cmd, err := p.Cmd(tt.bucket)
		if err != nil {
			t.Fatalf("Cmd(%d): %v", tt.bucket, err)
		}
		if cmd != tt.want {
			t.Errorf("Cmd(%d): got %+v, want %+v", tt.bucket, cmd, tt.want)
		}
	}

	if p.At(9) != 10 {
		t.Errorf("At(9): got %d, want 10", p.At(9))
	}
	if p.TakeUploaded() != 10 || p.TakeUploaded() != 0 {
		t.Error("TakeUploaded should report and reset")
	}
	if p.Section(nil) != nil {
		t.Error("empty data should take no buckets")
	}
}

func TestPoolReusesFreedBuckets(t *testing.T) {
	p := NewPool[byte](2)
	first := p.Section([]byte{1, 2, 3, 4})
	if err := p.Unsection(first[0]); err != nil {
		t.Fatal(err)
	}
	size := p.Len()

	again := p.Section([]byte{9})
	if again[0] != first[0] {
		t.Errorf("expected freed bucket %d to be reused, got %d", first[0], again[0])
	}
	if p.Len() != size {
		t.Errorf("store grew from %d to %d despite a free bucket", size, p.Len())
	}
	if p.Active() != 2 {
		t.Errorf("Active: got %d, want 2", p.Active())
	}

	if err := p.Unsection(Bucket(99)); !errors.Is(err, ErrBucketFree) {
		t.Errorf("expected ErrBucketFree, got %v", err)
	}
	p.Unsection(again[0])
	if _, err := p.Cmd(again[0]); !errors.Is(err, ErrBucketFree) {
		t.Errorf("Cmd on free bucket: expected ErrBucketFree, got %v", err)
	}
}

func TestRebase(t *testing.T) {
	// Mesh of 6 vertices split 4+2, landing in buckets 3 and 1
	got := Rebase([]uint32{0, 3, 4, 5}, []Bucket{3, 1}, 4)
	want := []uint32{12, 15, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Rebase[%d]: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestCommandTriangles(t *testing.T) {
	if n := (Command{VertexCount: 7}).Triangles(); n != 2 {
		t.Errorf("Triangles: got %d, want 2", n)
	}
}

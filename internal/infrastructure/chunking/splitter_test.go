package chunking

import (
	"strings"
	"testing"
)

func TestSplitterWindows(t *testing.T) {
	s, err := NewSplitter(1000, 200)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("a", 2500)
	chunks := s.Chunk("doc.pdf", text)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantStarts := []int{0, 800, 1600}
	wantSizes := []int{1000, 1000, 900}
	for i, c := range chunks {
		if c.Metadata["start_char"] != wantStarts[i] {
			t.Fatalf("chunk %d: start %v, want %d", i, c.Metadata["start_char"], wantStarts[i])
		}
		if c.Metadata["chunk_size"] != wantSizes[i] {
			t.Fatalf("chunk %d: size %v, want %d", i, c.Metadata["chunk_size"], wantSizes[i])
		}
		if len([]rune(c.ChunkText)) != wantSizes[i] {
			t.Fatalf("chunk %d: text length %d, want %d", i, len([]rune(c.ChunkText)), wantSizes[i])
		}
	}
	if chunks[0].ChunkID != "doc_chunk_0" || chunks[2].ChunkID != "doc_chunk_2" {
		t.Fatalf("unexpected chunk ids: %s, %s", chunks[0].ChunkID, chunks[2].ChunkID)
	}
	if chunks[1].ChunkIndex != 1 {
		t.Fatalf("unexpected chunk index: %d", chunks[1].ChunkIndex)
	}
}

func TestSplitterShortText(t *testing.T) {
	s, err := NewSplitter(1000, 200)
	if err != nil {
		t.Fatal(err)
	}

	chunks := s.Chunk("short.pdf", "hello")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].ChunkText != "hello" {
		t.Fatalf("unexpected text: %q", chunks[0].ChunkText)
	}
	if chunks[0].Metadata["end_char"] != 5 {
		t.Fatalf("unexpected end: %v", chunks[0].Metadata["end_char"])
	}
}

func TestSplitterEmptyText(t *testing.T) {
	s, err := NewSplitter(1000, 200)
	if err != nil {
		t.Fatal(err)
	}
	if chunks := s.Chunk("doc.pdf", ""); chunks != nil {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestSplitterRuneBoundaries(t *testing.T) {
	s, err := NewSplitter(4, 1)
	if err != nil {
		t.Fatal(err)
	}

	chunks := s.Chunk("jp.pdf", "日本語のテキスト")
	for i, c := range chunks {
		if strings.ContainsRune(c.ChunkText, '�') {
			t.Fatalf("chunk %d split inside a rune: %q", i, c.ChunkText)
		}
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks over 8 runes, got %d", len(chunks))
	}
}

func TestSplitterDeterministic(t *testing.T) {
	s, _ := NewSplitter(10, 3)
	text := strings.Repeat("abc", 20)
	a := s.Chunk("x.pdf", text)
	b := s.Chunk("x.pdf", text)
	if len(a) != len(b) {
		t.Fatalf("runs differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ChunkID != b[i].ChunkID || a[i].ChunkText != b[i].ChunkText {
			t.Fatalf("runs differ at chunk %d", i)
		}
	}
}

func TestSplitterConfigValidation(t *testing.T) {
	cases := []struct{ size, overlap int }{
		{0, 0},
		{-1, 0},
		{100, 100},
		{100, 150},
		{100, -1},
	}
	for _, c := range cases {
		if _, err := NewSplitter(c.size, c.overlap); err == nil {
			t.Fatalf("expected error for size=%d overlap=%d", c.size, c.overlap)
		}
	}
	if _, err := NewSplitter(100, 0); err != nil {
		t.Fatalf("zero overlap must be allowed: %v", err)
	}
}

package parser

import (
	"fmt"
	"testing"
)

// BenchmarkTextParser measures debug log parsing throughput.
func BenchmarkTextParser(b *testing.B) {
	p := NewTextParser()
	line := "2026-02-17 12:00:00 Tool call: Read /src/main.go"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Parse(line)
	}
}

// BenchmarkTextParserToolScan measures the worst case: no marker, full tool scan.
func BenchmarkTextParserToolScan(b *testing.B) {
	p := NewTextParser()
	line := "2026-02-17 12:00:00 considering the next step for the refactor"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Parse(line)
	}
}

// BenchmarkJSONLParser measures session log parsing throughput.
func BenchmarkJSONLParser(b *testing.B) {
	p := NewJSONLParser()
	line := `{"type":"tool_use","name":"Bash","content":"go test ./...","timestamp":"2026-02-17T12:00:00Z","agent_id":"abc-123"}`

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Parse(line)
	}
}

// BenchmarkParserThroughput measures sustained lines/sec over a mixed batch.
func BenchmarkParserThroughput(b *testing.B) {
	lines := make([]string, 1000)
	for i := range lines {
		switch i % 3 {
		case 0:
			lines[i] = fmt.Sprintf(`{"type":"tool_result","name":"Read","content":"read %d bytes"}`, i)
		case 1:
			lines[i] = fmt.Sprintf("2026-02-17T12:00:00Z Tool call: Grep item%d", i)
		case 2:
			lines[i] = fmt.Sprintf(`{"type":"message","content":"step %d`, i) // truncated, falls back
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ParseStructured(lines[i%1000])
	}
}

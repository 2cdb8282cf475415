package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// pirRecord is one entry of a PIR-format alignment file: a header line
// (">P1;id"), a free-text description line, then one or more sequence
// lines terminated by '*'.
type pirRecord struct {
	ID  string
	Seq string
}

// parsePIR reads a PIR alignment file (spec.md §6.2): a header line, a
// description line, then sequence lines ending in '*', repeated for
// each record. Requires at least two records; the first is the
// reference.
func parsePIR(r io.Reader) ([]pirRecord, error) {
	scanner := bufio.NewScanner(r)
	var records []pirRecord
	var cur *pirRecord
	var seq strings.Builder
	awaitingDescription := false

	flush := func() {
		if cur != nil {
			cur.Seq = strings.ToUpper(seq.String())
			records = append(records, *cur)
		}
		cur = nil
		seq.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			flush()
			id := strings.TrimPrefix(line, ">")
			if semi := strings.LastIndex(id, ";"); semi >= 0 {
				id = id[semi+1:]
			}
			cur = &pirRecord{ID: id}
			awaitingDescription = true
			continue
		}
		if cur == nil {
			continue
		}
		if awaitingDescription {
			awaitingDescription = false
			continue
		}
		body := strings.TrimSuffix(line, "*")
		seq.WriteString(body)
		if strings.HasSuffix(line, "*") {
			flush()
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("pir: alignment file must contain at least two records, got %d", len(records))
	}
	return records, nil
}

// ABOUTME: Wire formats for the exchange files: buffer-list lines and result documents
// ABOUTME: Input lines are "%02d name"; results are a name line plus optional status trailer

package exchange

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/2389/bufpick/internal/buffers"
)

// trailerPrefix marks the status line appended by the pane helper.
const trailerPrefix = "#bufpick"

// Status describes how the picker finished.
type Status string

const (
	StatusUnknown   Status = ""
	StatusSelected  Status = "selected"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Result is the decoded content of the output file.
type Result struct {
	Name    string
	Status  Status
	CycleID string
	Message string
}

// FormatLine renders one buffer as an input line, without newline.
func FormatLine(e buffers.Entry) string {
	return fmt.Sprintf("%02d %s", e.Number, e.Name)
}

// ParseLine reverses FormatLine.
func ParseLine(line string) (buffers.Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	num, name, ok := strings.Cut(line, " ")
	if !ok || name == "" {
		return buffers.Entry{}, fmt.Errorf("malformed buffer line %q", line)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return buffers.Entry{}, fmt.Errorf("malformed buffer number in %q: %w", line, err)
	}
	return buffers.Entry{Number: n, Name: name}, nil
}

// EncodeInput serialises a buffer list. An empty list yields an empty document.
func EncodeInput(list buffers.List) []byte {
	var b bytes.Buffer
	for _, e := range list {
		b.WriteString(FormatLine(e))
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// DecodeInput parses a document produced by EncodeInput. Blank lines are skipped.
func DecodeInput(data []byte) (buffers.List, error) {
	list := buffers.List{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading buffer list: %w", err)
	}
	return list, nil
}

// Encode renders the result document. The trailer is omitted for StatusUnknown.
func (r Result) Encode() []byte {
	var b bytes.Buffer
	b.WriteString(r.Name)
	b.WriteByte('\n')
	if r.Status != StatusUnknown {
		fmt.Fprintf(&b, "%s %s %s", trailerPrefix, r.Status, r.CycleID)
		if r.Message != "" {
			b.WriteByte(' ')
			b.WriteString(strings.Join(strings.Fields(r.Message), " "))
		}
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// DecodeResult parses an output document. The first line is the name; any
// later line starting with the trailer prefix supplies status and cycle id.
// Other trailing content is ignored.
func DecodeResult(data []byte) Result {
	var r Result
	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 {
		return r
	}
	r.Name = strings.TrimRight(lines[0], "\r")

	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		rest, ok := strings.CutPrefix(line, trailerPrefix+" ")
		if !ok {
			continue
		}
		fields := strings.SplitN(rest, " ", 3)
		r.Status = Status(fields[0])
		if len(fields) > 1 {
			r.CycleID = fields[1]
		}
		if len(fields) > 2 {
			r.Message = fields[2]
		}
		break
	}
	return r
}

// FirstLine returns the first line of an output document.
func FirstLine(data []byte) string {
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimRight(line, "\r")
}

// ResolveName maps a picker output line back to a buffer name. Matchers print
// the whole "%02d name" line they were fed, while a cancellation echo is the
// bare name; both resolve against list.
func ResolveName(line string, list buffers.List) string {
	line = strings.TrimSpace(line)
	if line == "" || list.Contains(line) {
		return line
	}
	if e, err := ParseLine(line); err == nil {
		return e.Name
	}
	return line
}

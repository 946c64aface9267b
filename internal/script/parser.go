package script

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// Diag is a recoverable problem found while parsing. Diagnostics never stop
// the parse; callers aggregate them into the end-of-run summary.
type Diag struct {
	File string
	Line int
	Msg  string
}

// String renders the diagnostic in file:line form.
func (d Diag) String() string {
	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Msg)
}

// Result is the output of one parse pass: instructions in source order plus
// any diagnostics recorded along the way.
type Result struct {
	Instructions []Instruction
	Diags        []Diag
}

// Parse parses standalone script text. It never fails: malformed lines are
// recorded as diagnostics and skipped. Include directives cannot be resolved
// without a filesystem root and are recorded as diagnostics.
//
// Postcondition: returns a Result; len(Diags) == 0 iff every line was well formed.
func Parse(text, name string) Result {
	var res Result
	parseInto(text, name, &res, func(rel string, line int) {
		res.Diags = append(res.Diags, Diag{File: name, Line: line,
			Msg: fmt.Sprintf("cannot resolve include %q outside a source directory", rel)})
	})
	return res
}

// ParseFile parses the script at path and splices include/run directives in
// place, recursively. A visited set keyed on the cleaned absolute path guards
// against inclusion cycles; a repeated include is a diagnostic, not an error.
//
// Precondition: path must be readable.
// Postcondition: returns a Result or an I/O error for the root file only.
func ParseFile(path string) (Result, error) {
	var res Result
	visited := make(map[string]bool)
	if err := parseFileInto(path, &res, visited); err != nil {
		return Result{}, err
	}
	return res, nil
}

func parseFileInto(path string, res *Result, visited map[string]bool) error {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("resolving script path %s: %w", path, err)
	}
	if visited[abs] {
		res.Diags = append(res.Diags, Diag{File: path, Line: 0,
			Msg: "inclusion cycle detected; file already parsed"})
		return nil
	}
	visited[abs] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script file %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	parseInto(string(data), path, res, func(rel string, line int) {
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if err := parseFileInto(target, res, visited); err != nil {
			// A missing included file is recoverable; the root file is not.
			res.Diags = append(res.Diags, Diag{File: path, Line: line, Msg: err.Error()})
		}
	})
	return nil
}

// parseInto scans text line by line, appending instructions and diagnostics
// to res. include is invoked for every include/run directive.
func parseInto(text, name string, res *Result, include func(rel string, line int)) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	inBlockComment := false

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		first := firstWord(line)
		if inBlockComment {
			if strings.EqualFold(first, "endrem") {
				inBlockComment = false
			}
			continue
		}
		switch {
		case strings.EqualFold(first, "beginrem"):
			inBlockComment = true
			continue
		case strings.EqualFold(first, "rem") || strings.HasPrefix(line, ";"):
			continue
		}

		fields, terminated := splitFields(line)
		if !terminated {
			res.Diags = append(res.Diags, Diag{File: name, Line: lineNum,
				Msg: fmt.Sprintf("unterminated quote in %q", line)})
			continue
		}
		if len(fields) == 0 {
			continue
		}

		head, args := fields[0], fields[1:]

		if strings.EqualFold(head, "include") || strings.EqualFold(head, "run") {
			if len(args) != 1 {
				res.Diags = append(res.Diags, Diag{File: name, Line: lineNum,
					Msg: fmt.Sprintf("%s directive needs exactly one path, got %d args", strings.ToLower(head), len(args))})
				continue
			}
			res.Instructions = append(res.Instructions, Instruction{
				Receiver: strings.ToLower(head),
				Verb:     strings.ToLower(head),
				Args:     args,
				Kind:     KindInclude,
				File:     name,
				Line:     lineNum,
			})
			include(args[0], lineNum)
			continue
		}

		dot := strings.Index(head, ".")
		if dot <= 0 || dot == len(head)-1 {
			res.Diags = append(res.Diags, Diag{File: name, Line: lineNum,
				Msg: fmt.Sprintf("unrecognized instruction %q", head)})
			continue
		}
		receiver, verb := head[:dot], head[dot+1:]

		inst := Instruction{
			Receiver: receiver,
			Verb:     verb,
			Args:     args,
			Kind:     Classify(receiver, verb),
			File:     name,
			Line:     lineNum,
		}
		if msg, ok := checkArgs(inst); !ok {
			res.Diags = append(res.Diags, Diag{File: name, Line: lineNum, Msg: msg})
			continue
		}
		res.Instructions = append(res.Instructions, inst)
	}
}

// checkArgs validates argument shape for the kinds with numeric payloads.
// Opaque instructions are never rejected.
func checkArgs(inst Instruction) (string, bool) {
	switch inst.Kind {
	case KindPosition, KindRotation:
		if len(inst.Args) != 1 {
			return fmt.Sprintf("%s.%s needs one vector argument, got %d", inst.Receiver, inst.Verb, len(inst.Args)), false
		}
		if _, err := SplitVec3(inst.Args[0]); err != nil {
			return err.Error(), false
		}
	case KindTeam:
		if len(inst.Args) != 1 {
			return fmt.Sprintf("%s.%s needs one team argument, got %d", inst.Receiver, inst.Verb, len(inst.Args)), false
		}
		if _, err := strconv.Atoi(inst.Args[0]); err != nil {
			return fmt.Sprintf("team %q is not an integer", inst.Args[0]), false
		}
	case KindCreateTemplate:
		if len(inst.Args) < 2 {
			return fmt.Sprintf("ObjectTemplate.create needs a class and a name, got %d args", len(inst.Args)), false
		}
	case KindCreateInstance:
		if len(inst.Args) < 1 {
			return "Object.create needs a template or type name", false
		}
	}
	return "", true
}

// splitFields splits a line on whitespace outside double quotes. Quoted
// fields may be empty. The second return is false when a quote is left open.
func splitFields(line string) ([]string, bool) {
	var fields []string
	var b strings.Builder
	started := false
	inQuote := false

	flush := func() {
		if started {
			fields = append(fields, b.String())
			b.Reset()
			started = false
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			if inQuote {
				// Closing quote always ends the field, even when empty.
				fields = append(fields, b.String())
				b.Reset()
				started = false
				inQuote = false
			} else {
				flush()
				inQuote = true
				started = true
				b.Reset()
			}
		case !inQuote && unicode.IsSpace(r):
			flush()
		default:
			started = true
			b.WriteRune(r)
		}
	}
	if inQuote {
		return fields, false
	}
	flush()
	return fields, true
}

func firstWord(line string) string {
	end := strings.IndexFunc(line, unicode.IsSpace)
	if end < 0 {
		return line
	}
	return line[:end]
}

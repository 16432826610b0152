package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"
)

type field struct {
	key string
	val any
}

// record is an insertion-ordered set of fields; setting a key twice keeps
// the first position and the last value.
type record struct {
	fields []field
	pos    map[string]int
}

func newRecord(capacity int) *record {
	return &record{fields: make([]field, 0, capacity), pos: make(map[string]int, capacity)}
}

func (r *record) set(key string, val any) {
	if i, ok := r.pos[key]; ok {
		r.fields[i].val = val
		return
	}
	r.pos[key] = len(r.fields)
	r.fields = append(r.fields, field{key, val})
}

func (r *record) setDefault(key string, val any) {
	if _, ok := r.pos[key]; !ok {
		r.set(key, val)
	}
}

func (r *record) del(key string) {
	i, ok := r.pos[key]
	if !ok {
		return
	}
	r.fields = append(r.fields[:i], r.fields[i+1:]...)
	delete(r.pos, key)
	for j := i; j < len(r.fields); j++ {
		r.pos[r.fields[j].key] = j
	}
}

func (r *record) str(key string) (string, bool) {
	i, ok := r.pos[key]
	if !ok {
		return "", false
	}
	s, ok := r.fields[i].val.(string)
	return s, ok && s != ""
}

// prune drops empty strings and nil values.
func (r *record) prune() {
	for i := len(r.fields) - 1; i >= 0; i-- {
		switch v := r.fields[i].val.(type) {
		case nil:
			r.del(r.fields[i].key)
		case string:
			if v == "" {
				r.del(r.fields[i].key)
			}
		}
	}
}

func (r *record) ordered(rank map[string]int) []field {
	out := append([]field(nil), r.fields...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i].key]
		rj, jok := rank[out[j].key]
		if iok != jok {
			return iok
		}
		if iok {
			return ri < rj
		}
		return out[i].key < out[j].key
	})
	return out
}

func (r *record) encode(format logFormat, rank map[string]int) ([]byte, error) {
	var buf bytes.Buffer
	fields := r.ordered(rank)
	if format == formatJSON {
		buf.WriteByte('{')
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(f.key)
			val, err := json.Marshal(f.val)
			if err != nil {
				return nil, fmt.Errorf("logger: encode %s: %w", f.key, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	} else {
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(f.key)
			buf.WriteByte('=')
			buf.WriteString(kvValue(f.val))
		}
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func kvValue(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

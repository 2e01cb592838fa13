package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/majinstudio/labvitals/constants"
)

// maxTreeDepth bounds both decoding and scanning so pathological
// documents cannot blow the stack.
const maxTreeDepth = 64

var errTooDeep = errors.New("document nesting too deep")

// NodeKind tags the variants of a decoded document tree.
type NodeKind uint8

const (
	KindNull NodeKind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

// Node is a tagged union over the value shapes a JSON-like document can
// carry. Objects keep their key order so traversal (and therefore
// first-wins recording) is deterministic.
type Node struct {
	Kind   NodeKind
	Str    string
	Num    float64
	Bool   bool
	Keys   []string
	Fields map[string]*Node
	Items  []*Node
}

// DecodeTree parses raw JSON into a Node tree, preserving object key
// order.
func DecodeTree(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := decodeValue(dec, 0)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func decodeValue(dec *json.Decoder, depth int) (*Node, error) {
	if depth > maxTreeDepth {
		return nil, errTooDeep
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &Node{Kind: KindObject, Fields: map[string]*Node{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not string", keyTok)
				}
				child, err := decodeValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				if _, dup := n.Fields[key]; !dup {
					n.Keys = append(n.Keys, key)
				}
				n.Fields[key] = child
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return n, nil
		case '[':
			n := &Node{Kind: KindArray}
			for dec.More() {
				child, err := decodeValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				n.Items = append(n.Items, child)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return &Node{Kind: KindString, Str: t}, nil
	case json.Number:
		v, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindNumber, Num: v}, nil
	case bool:
		return &Node{Kind: KindBool, Bool: t}, nil
	case nil:
		return &Node{Kind: KindNull}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// ScanTree walks a document tree depth first and collects canonical
// fields.
//
// Two shapes are supported on every object. The plain shape matches a
// key against the field tables and validates its value:
//
//	{"glucose": 105}
//
// The tabular-export shape carries the label as a string value and the
// measurement under a sibling key:
//
//	{"test_name": "glucose", "result": 105}
//
// For the latter, the first sibling whose cleaned value is in range is
// recorded. Traversal recurses into every value regardless of whether
// it matched, in object key order, so the first valid occurrence in the
// document wins.
func ScanTree(root *Node) Result {
	res := Result{}
	scanNode(root, res, 0)
	return res
}

func scanNode(n *Node, res Result, depth int) {
	if n == nil || depth > maxTreeDepth {
		return
	}
	switch n.Kind {
	case KindObject:
		for _, k := range n.Keys {
			v := n.Fields[k]
			if f, ok := MatchKey(k); ok {
				if val, okc := cleanScalar(v); okc && constants.InRange(f, val) {
					res.Record(f, val)
				}
			}
			if v.Kind == KindString {
				if f, ok := MatchKey(v.Str); ok && !res.Has(f) {
					for _, sk := range n.Keys {
						if sk == k {
							continue
						}
						if val, okc := cleanScalar(n.Fields[sk]); okc && constants.InRange(f, val) {
							res.Record(f, val)
							break
						}
					}
				}
			}
			scanNode(v, res, depth+1)
		}
	case KindArray:
		for _, item := range n.Items {
			scanNode(item, res, depth+1)
		}
	}
}

// cleanScalar runs the value cleaner over scalar nodes. Containers,
// booleans and nulls never yield a value.
func cleanScalar(n *Node) (float64, bool) {
	if n == nil {
		return 0, false
	}
	switch n.Kind {
	case KindString:
		return CleanValue(n.Str)
	case KindNumber:
		return CleanValue(strconv.FormatFloat(n.Num, 'f', -1, 64))
	default:
		return 0, false
	}
}

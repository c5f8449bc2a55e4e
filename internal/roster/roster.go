// Package roster reads the set of player ids a collection run iterates.
package roster

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrMissingRoster is returned when the roster artifact is absent or unusable.
var ErrMissingRoster = errors.New("missing roster")

// Load returns the player ids from the roster at path in document order.
// Both {"players": {id: ...}} and a bare {id: ...} object are accepted.
// A repeated id keeps its first position.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingRoster, err)
	}
	defer f.Close()

	ids, err := Parse(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingRoster, path, err)
	}
	return ids, nil
}

// Parse reads roster JSON from r.
func Parse(r io.Reader) ([]string, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var (
		ids     []string
		wrapped bool
		seen    = make(map[string]struct{})
	)
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if key == "players" && len(ids) == 0 && !wrapped {
			wrapped = true
			isObject, err := peekObject(dec)
			if err != nil {
				return nil, err
			}
			if !isObject {
				continue
			}
			inner, err := readObjectKeys(dec)
			if err != nil {
				return nil, err
			}
			ids = appendUnique(ids, seen, inner...)
			continue
		}
		if err := skipValue(dec); err != nil {
			return nil, err
		}
		if !wrapped {
			ids = appendUnique(ids, seen, key)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errors.New("roster contains no players")
	}
	return ids, nil
}

func appendUnique(ids []string, seen map[string]struct{}, keys ...string) []string {
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		ids = append(ids, k)
	}
	return ids
}

func readObjectKeys(dec *json.Decoder) ([]string, error) {
	var keys []string
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if err := skipValue(dec); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return keys, nil
}

// peekObject consumes the next value. It reports true, leaving the decoder
// inside the object, when that value is an object.
func peekObject(dec *json.Decoder) (bool, error) {
	tok, err := dec.Token()
	if err != nil {
		return false, err
	}
	if d, ok := tok.(json.Delim); ok {
		switch d {
		case '{':
			return true, nil
		case '[':
			return false, skipRest(dec)
		}
	}
	return false, nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("unexpected token %v", tok)
	}
	return key, nil
}

func skipValue(dec *json.Decoder) error {
	var discard json.RawMessage
	return dec.Decode(&discard)
}

// skipRest consumes tokens until the container just opened is closed.
func skipRest(dec *json.Decoder) error {
	for depth := 1; depth > 0; {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeJournal reads operation records from a stream of JSONL data, decodes
// each line into the appropriate record struct, and returns a sorted journal.
// Records persisted with a sequence id keep it, so a decoded journal replays
// byte-identically to the one that was encoded.
func DecodeJournal(r io.Reader) (*Journal, error) {
	journal := NewJournal()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Kind Kind `json:"kind"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify kind in line %q: %w", string(lineBytes), err)
		}

		var decoded Operation
		var err error

		switch identifier.Kind {
		case KindIncomeSpending:
			var op IncomeSpending
			err = json.Unmarshal(lineBytes, &op)
			decoded = op
		case KindTrade:
			var op Trade
			err = json.Unmarshal(lineBytes, &op)
			decoded = op
		case KindTransfer:
			var op Transfer
			err = json.Unmarshal(lineBytes, &op)
			decoded = op
		case KindDividend:
			var op Dividend
			err = json.Unmarshal(lineBytes, &op)
			decoded = op
		case KindCorporateAction:
			var op CorporateAction
			err = json.Unmarshal(lineBytes, &op)
			decoded = op
		default:
			err = fmt.Errorf("unknown record kind: %q", identifier.Kind)
		}

		if err != nil {
			return nil, err
		}
		if err := decoded.Validate(); err != nil {
			return nil, fmt.Errorf("invalid record %q: %w", string(lineBytes), err)
		}
		journal.Append(decoded)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}

	return journal, nil
}

// EncodeOperation marshals a single record to JSON and writes it to the
// writer, followed by a newline, in JSONL format. Field order is stable, so
// the same journal always encodes to the same bytes.
func EncodeOperation(w io.Writer, op Operation) error {
	data, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// EncodeJournal persists the journal to an io.Writer in JSONL format, one
// record per line in chronological order.
func EncodeJournal(w io.Writer, j *Journal) error {
	for _, op := range j.Operations() {
		if err := EncodeOperation(w, op); err != nil {
			return err
		}
	}
	return nil
}

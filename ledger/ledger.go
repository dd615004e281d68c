// Package ledger keeps the append-only record of the trades an agent executed.
package ledger

import (
	"io"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/tantralabs/sena/models"
)

// Ledger is safe for concurrent use. Hold decisions are never recorded and
// recorded entries are never changed.
type Ledger struct {
	mu       sync.RWMutex
	agentID  string
	strategy string
	entries  []models.LedgerEntry
}

func New(agentID string, strategy string) *Ledger {
	return &Ledger{
		agentID:  agentID,
		strategy: strategy,
		entries:  make([]models.LedgerEntry, 0),
	}
}

// Append records d if it is a buy or sell and reports whether it did.
// Negative amounts are recorded as zero.
func (l *Ledger) Append(d models.Decision, at time.Time) (models.LedgerEntry, bool) {
	if !d.IsTrade() {
		return models.LedgerEntry{}, false
	}
	amount := d.Amount
	if amount < 0 {
		amount = 0
	}
	entry := models.LedgerEntry{
		ID:        l.agentID + "_" + uuid.NewString(),
		AgentID:   l.agentID,
		Strategy:  l.strategy,
		Action:    d.Action,
		Amount:    amount,
		Price:     d.Price,
		Profit:    d.ProfitLoss,
		Reason:    d.Reason,
		Timestamp: at,
		Metadata:  cloneMetadata(d.Metadata),
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	entry.Metadata = cloneMetadata(entry.Metadata)
	return entry, true
}

// Entries returns a copy of every entry in insertion order. Metadata is
// cloned all the way down so callers can not reach recorded state.
func (l *Ledger) Entries() []models.LedgerEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.LedgerEntry, 0, len(l.entries))
	if err := copier.Copy(&out, &l.entries); err != nil || len(out) != len(l.entries) {
		out = append(out[:0], l.entries...)
	}
	for i := range out {
		out[i].Metadata = cloneMetadata(out[i].Metadata)
	}
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

type entryRow struct {
	ID        string  `csv:"id"`
	Agent     string  `csv:"agent"`
	Strategy  string  `csv:"strategy"`
	Timestamp string  `csv:"timestamp"`
	Action    string  `csv:"action"`
	Amount    float64 `csv:"amount"`
	Price     float64 `csv:"price"`
	Profit    float64 `csv:"profit"`
	Reason    string  `csv:"reason"`
}

func rows(entries []models.LedgerEntry) []*entryRow {
	out := make([]*entryRow, len(entries))
	for i, e := range entries {
		out[i] = &entryRow{
			ID:        e.ID,
			Agent:     e.AgentID,
			Strategy:  e.Strategy,
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
			Action:    string(e.Action),
			Amount:    e.Amount,
			Price:     e.Price,
			Profit:    e.Profit,
			Reason:    e.Reason,
		}
	}
	return out
}

// WriteCSV writes entries as csv with a header row.
func WriteCSV(entries []models.LedgerEntry, w io.Writer) error {
	return errors.Wrap(gocsv.Marshal(rows(entries), w), "marshal ledger csv")
}

// SaveCSV writes entries to fileName, replacing any existing file.
func SaveCSV(entries []models.LedgerEntry, fileName string) error {
	file, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, os.ModePerm)
	if err != nil {
		return errors.Wrapf(err, "open %s", fileName)
	}
	defer file.Close()
	return errors.Wrap(gocsv.MarshalFile(rows(entries), file), "marshal ledger csv")
}

// cloneMetadata copies m and every map or slice nested in it, so neither the
// caller nor a reader of Entries shares memory with a recorded entry.
func cloneMetadata(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	return deepCopy(reflect.ValueOf(v)).Interface()
}

func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(deepCopy(v.Elem()))
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	}
	return v
}

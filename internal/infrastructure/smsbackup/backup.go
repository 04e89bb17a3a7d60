// Package smsbackup reads SMS backup exports and writes parsed records as CSV.
package smsbackup

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"smsledger/internal/domain/ingest"
)

// Backup is the root of an SMS backup export: <smses><sms .../></smses>.
type Backup struct {
	XMLName xml.Name `xml:"smses"`
	SMS     []SMS    `xml:"sms"`
}

// SMS is one exported message. Date is epoch milliseconds as text.
type SMS struct {
	Address string `xml:"address,attr"`
	Body    string `xml:"body,attr"`
	Date    string `xml:"date,attr"`
}

// Filter narrows the messages replayed from a backup. Zero values match everything.
type Filter struct {
	Sender string
	From   time.Time
}

// Read decodes a backup from r.
func Read(r io.Reader) (*Backup, error) {
	var b Backup
	if err := xml.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("error parsing XML: %w", err)
	}
	return &b, nil
}

// ReadFile decodes the backup stored at path.
func ReadFile(path string) (*Backup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Messages returns the backup's messages in file order as inbound messages.
// Exact duplicates (same date, sender and body) and entries with an
// unreadable date are dropped.
func (b *Backup) Messages(f Filter) []ingest.InboundMessage {
	seen := make(map[string]bool, len(b.SMS))
	out := make([]ingest.InboundMessage, 0, len(b.SMS))

	for _, sms := range b.SMS {
		if f.Sender != "" && sms.Address != f.Sender {
			continue
		}

		signature := sms.Date + "|" + sms.Address + "|" + sms.Body
		if seen[signature] {
			continue
		}
		seen[signature] = true

		ms, err := strconv.ParseInt(sms.Date, 10, 64)
		if err != nil {
			continue
		}
		received := time.UnixMilli(ms)
		if !f.From.IsZero() && received.Before(f.From) {
			continue
		}

		out = append(out, ingest.InboundMessage{
			Sender:     sms.Address,
			Body:       sms.Body,
			ReceivedAt: received,
		})
	}

	return out
}

package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"payment_engine/internal/ledger"
)

// WriteSnapshots renders the account table with a header row, one row per
// account, amounts fixed to four decimal places.
func WriteSnapshots(w io.Writer, snapshots []ledger.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}
	for _, s := range snapshots {
		row := []string{
			strconv.FormatUint(uint64(s.Client), 10),
			s.Available.String(),
			s.Held.String(),
			s.Total.String(),
			strconv.FormatBool(s.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FilePath: internal/notify/notify.go
package notify

import (
	"context"

	"github.com/beeguardai/hub/internal/models"
)

// Notifier delivers outbound messages to tenant users. Delivery is
// best-effort: a failed send is reported but never retried by the caller.
type Notifier interface {
	SendGroupedAlert(ctx context.Context, recipient string, items []models.AlertBatchItem) error
	SendReport(ctx context.Context, recipient string, document []byte, filename string) error
}

// DocumentRenderer turns per-hive period statistics into a report document
type DocumentRenderer interface {
	BuildReport(period models.ReportPeriod, hives []models.HiveReport) ([]byte, error)
}

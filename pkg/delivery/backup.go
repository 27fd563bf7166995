package delivery

import (
	"context"
	"errors"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ledger"
)

// ErrBackupNotStored is returned when the backup list could not be written.
var ErrBackupNotStored = errors.New("backup list not stored")

// BackupSink appends the lead to the capped local backup list.
type BackupSink struct {
	List *ledger.BackupList
}

func (s *BackupSink) Name() string { return "local_backup" }

func (s *BackupSink) Deliver(ctx context.Context, lead domain.LeadRecord) error {
	if !s.List.Append(ctx, lead) {
		return ErrBackupNotStored
	}
	return nil
}

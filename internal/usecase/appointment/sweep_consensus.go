package appointment

import (
	"context"

	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
)

type SweepConsensusPurge struct {
	repo domain.Repository
}

func NewSweepConsensusPurge(repo domain.Repository) *SweepConsensusPurge {
	return &SweepConsensusPurge{repo: repo}
}

// Execute é a rede de segurança do purge por consenso: pega qualquer
// registro com as três flags que o gatilho imediato tenha perdido.
// Idempotente: purgar o que já foi purgado é no-op, não erro.
func (uc *SweepConsensusPurge) Execute(ctx context.Context) (int64, error) {
	return uc.repo.PurgeAllConsensus(ctx)
}

package keyboard

import (
	"context"
	"time"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
)

// MergedInput опрашивает основной источник с ожиданием, остальные без ожидания.
type MergedInput struct {
	primary port.OperatorInput
	extra   []port.OperatorInput
}

// Merge объединяет источники команд оператора. nil-источники пропускаются.
func Merge(primary port.OperatorInput, extra ...port.OperatorInput) *MergedInput {
	m := &MergedInput{primary: primary}
	for _, in := range extra {
		if in != nil {
			m.extra = append(m.extra, in)
		}
	}
	return m
}

func (m *MergedInput) Poll(ctx context.Context, wait time.Duration) (entity.OperatorCommand, error) {
	cmd, err := m.primary.Poll(ctx, wait)
	if err != nil || cmd != entity.CommandNone {
		return cmd, err
	}
	for _, in := range m.extra {
		cmd, err := in.Poll(ctx, 0)
		if err != nil || cmd != entity.CommandNone {
			return cmd, err
		}
	}
	return entity.CommandNone, nil
}

var _ port.OperatorInput = (*MergedInput)(nil)

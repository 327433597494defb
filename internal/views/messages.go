// Package views holds the state behind the dashboard, tracks and profile
// pages. Each view runs its legacy migration before the first fetch,
// caches what the backend returns, and turns failures into an inline
// message. The CLI and the TUI screens share these types.
package views

import (
	"errors"
	"time"

	"github.com/qpath/qpath/internal/api"
)

// Inline messages shown to the user.
const (
	MsgSessionExpired = "Sessão expirada. Faça login novamente."
	MsgNetwork        = "Falha de rede ao comunicar com o servidor."

	MsgLoadDashboard = "Não foi possível carregar os dados do dashboard."
	MsgToggleTask    = "Não foi possível atualizar a tarefa. Tente novamente."
	MsgPomodoro      = "Não foi possível registrar a sessão Pomodoro."
	MsgLoadTracks    = "Não foi possível carregar as trilhas."
	MsgUpdateLesson  = "Não foi possível atualizar o progresso da lição."
	MsgLoadProfile   = "Não foi possível carregar os dados do perfil."
	MsgCreateReward  = "Não foi possível criar a recompensa. Tente novamente."
	MsgRewardFields  = "Preencha a condição e a recompensa."
	MsgNoData        = "Nenhum dado disponível."
)

// Localize picks the inline message for err. Expired sessions and network
// failures get their own wording; everything else uses fallback.
func Localize(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, api.ErrSessionExpired) {
		return MsgSessionExpired
	}
	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return MsgNetwork
	}
	return fallback
}

var monthsPT = [...]string{
	"jan.", "fev.", "mar.", "abr.", "mai.", "jun.",
	"jul.", "ago.", "set.", "out.", "nov.", "dez.",
}

// FormatDate renders a backend date as "02 de mai. de 2024". Values that
// do not parse are returned unchanged.
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return formatPT(t)
		}
	}
	return s
}

func formatPT(t time.Time) string {
	return t.Format("02") + " de " + monthsPT[t.Month()-1] + " de " + t.Format("2006")
}

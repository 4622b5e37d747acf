package services

// Notifier pushes live updates to clients watching a tournament.
// *brackets.Hub implements it.
type Notifier interface {
	Publish(tournamentID int, eventType string, payload any)
}

type noopNotifier struct{}

func (noopNotifier) Publish(int, string, any) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

type PhaseChangedPayload struct {
	TournamentID int    `json:"tournament_id"`
	Phase        string `json:"phase"`
}

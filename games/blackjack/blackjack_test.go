package blackjack

import (
	"strings"
	"testing"

	"pitwall-go/flow"
	"pitwall-go/utils"
)

// deal builds a deck that hands out player, dealer, player, dealer, then extra
func deal(ranks ...string) *utils.Deck {
	cards := make([]utils.Card, len(ranks))
	for i, r := range ranks {
		cards[i] = utils.NewCard(r, "♠️")
	}
	return utils.NewStackedDeck(cards...)
}

func TestSettlement(t *testing.T) {
	tests := []struct {
		name    string
		deck    []string
		hits    int
		outcome Outcome
		delta   int64
	}{
		// player 10+6, dealer 10+7; hit K busts
		{"player bust", []string{"10", "10", "6", "7", "K"}, 1, PlayerBust, -100},
		// player 10+8 stands, dealer 10+6 draws K
		{"dealer bust", []string{"10", "10", "8", "6", "K"}, 0, DealerBust, 100},
		// natural blackjack against dealer 19
		{"blackjack", []string{"A", "10", "K", "9"}, 0, PlayerBlackjack, 150},
		{"player higher", []string{"10", "10", "9", "8"}, 0, PlayerWin, 100},
		{"dealer higher", []string{"10", "10", "7", "9"}, 0, DealerWin, -100},
		{"push", []string{"10", "10", "8", "8"}, 0, Push, 0},
		// three-card 21 is not a blackjack; dealer 20
		{"three card 21", []string{"5", "10", "6", "K", "K"}, 1, PlayerWin, 100},
		// dealer bust checked before player blackjack
		{"dealer bust beats blackjack branch", []string{"A", "10", "K", "6", "9"}, 0, DealerBust, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := NewBlackjackGame(100, deal(tt.deck...))

			var tr flow.Transition
			for i := 0; i < tt.hits; i++ {
				tr = game.HandleHit()
			}
			if !game.IsOver() {
				tr = game.HandleStand()
			}
			if tr.Action != flow.CommitOutcome {
				t.Fatalf("expected commit, got %v", tr.Action)
			}

			result := game.Settle()
			if result.Outcome != tt.outcome {
				t.Errorf("outcome = %q, want %q", result.Outcome, tt.outcome)
			}
			if result.Delta != tt.delta {
				t.Errorf("delta = %d, want %d", result.Delta, tt.delta)
			}
		})
	}
}

func TestBlackjackPayoutFloors(t *testing.T) {
	game := NewBlackjackGame(3, deal("A", "10", "K", "9"))
	game.HandleStand()
	if got := game.Settle().Delta; got != 4 {
		t.Errorf("delta = %d, want 4", got)
	}
}

func TestHitAndStandRules(t *testing.T) {
	game := NewBlackjackGame(10, deal("5", "10", "6", "7", "10"))
	if !game.CanHit() || !game.CanStand() {
		t.Fatal("fresh game should allow hit and stand")
	}
	if got := game.Settle().Outcome; got != Undecided {
		t.Errorf("unfinished game settled as %q", got)
	}

	// 5+6+10 = 21: no more hits, stand still allowed
	if tr := game.HandleHit(); tr.Action != flow.PresentNext || tr.Next != flow.AwaitingPlayerAction {
		t.Errorf("hit to 21 should present the next action, got %+v", tr)
	}
	if game.CanHit() {
		t.Error("hit must be disabled at 21")
	}
	if tr := game.HandleHit(); tr.Action != flow.RejectEvent {
		t.Errorf("hit at 21 should be rejected, got %v", tr.Action)
	}

	game.HandleStand()
	if game.CanStand() || game.CanHit() {
		t.Error("finished game allows actions")
	}
	if tr := game.HandleStand(); tr.Action != flow.RejectEvent {
		t.Error("second stand should be rejected")
	}
}

func TestDealerDrawsToSeventeen(t *testing.T) {
	game := NewBlackjackGame(10, deal("10", "2", "9", "3", "4", "2", "6"))
	game.HandleStand()
	// 2+3+4+2 = 11, then 6 = 17
	if got := game.DealerHand.GetValue(); got != 17 {
		t.Errorf("dealer value = %d, want 17", got)
	}
	if game.DealerHand.Count() != 5 {
		t.Errorf("dealer drew %d cards, want 5", game.DealerHand.Count())
	}
}

func TestForfeit(t *testing.T) {
	game := NewBlackjackGame(40, deal("10", "10", "6", "7"))
	result := game.Forfeit()
	if result.Delta != -40 || !game.IsOver() {
		t.Errorf("forfeit = %+v", result)
	}
}

func TestValidateBet(t *testing.T) {
	if err := ValidateBet(0, 100); flow.UserMessage(err, "") != "❌ Your bet must be a positive number!" {
		t.Errorf("zero bet: %v", err)
	}
	err := ValidateBet(150, 100)
	want := "❌ You don't have enough chips! You have **100** chips, but you're trying to bet **150**. Please bet 100 or less."
	if flow.UserMessage(err, "") != want {
		t.Errorf("got %q", flow.UserMessage(err, ""))
	}
	if err := ValidateBet(100, 100); err != nil {
		t.Errorf("full balance bet rejected: %v", err)
	}
}

func TestEmbedsHideHoleCard(t *testing.T) {
	game := NewBlackjackGame(10, deal("10", "Q", "8", "7"))
	embed := game.GameEmbed()
	if !strings.Contains(embed.Fields[1].Value, "(?)") || strings.Contains(embed.Fields[1].Value, "Q") {
		t.Errorf("dealer hand leaked: %q", embed.Fields[1].Value)
	}

	game.HandleStand()
	result := game.Settle()
	final := game.ResultEmbed(result, 110)
	if final.Footer.Text != "New chip balance: 110" {
		t.Errorf("footer = %q", final.Footer.Text)
	}
	if final.Fields[2].Value != "Player Wins!" || final.Color != utils.WinColor {
		t.Errorf("unexpected result embed %+v", final.Fields[2])
	}
}

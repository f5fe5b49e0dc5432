package blackjack

import (
	"fmt"
	"math"

	"github.com/bwmarrin/discordgo"

	"pitwall-go/flow"
	"pitwall-go/utils"
)

// Outcome of a settled hand
type Outcome int

const (
	Undecided Outcome = iota
	PlayerBust
	DealerBust
	PlayerBlackjack
	PlayerWin
	DealerWin
	Push
)

var outcomeText = map[Outcome]string{
	PlayerBust:      "Player Busted! Dealer Wins!",
	DealerBust:      "Dealer Busted! Player Wins!",
	PlayerBlackjack: "Blackjack! Player Wins!",
	PlayerWin:       "Player Wins!",
	DealerWin:       "Dealer Wins!",
	Push:            "Push! It's a tie!",
}

func (o Outcome) String() string {
	return outcomeText[o]
}

// Result is the settlement of a finished game
type Result struct {
	Outcome Outcome
	Delta   int64
}

// BlackjackGame is one single-hand game against the dealer
type BlackjackGame struct {
	Bet        int64
	Deck       *utils.Deck
	PlayerHand *utils.Hand
	DealerHand *utils.Hand
	stood      bool
	over       bool
}

// NewBlackjackGame deals player, dealer, player, dealer from deck
func NewBlackjackGame(bet int64, deck *utils.Deck) *BlackjackGame {
	if deck == nil {
		deck = utils.NewDeck(nil)
	}
	game := &BlackjackGame{
		Bet:        bet,
		Deck:       deck,
		PlayerHand: utils.NewHand(),
		DealerHand: utils.NewHand(),
	}

	game.PlayerHand.AddCard(deck.Deal())
	game.DealerHand.AddCard(deck.Deal())
	game.PlayerHand.AddCard(deck.Deal())
	game.DealerHand.AddCard(deck.Deal())
	return game
}

// CanHit reports whether the player may draw
func (bg *BlackjackGame) CanHit() bool {
	return !bg.over && !bg.stood && bg.PlayerHand.GetValue() < utils.BlackjackTarget
}

// CanStand reports whether the player may stand
func (bg *BlackjackGame) CanStand() bool {
	return !bg.over && !bg.stood
}

// IsOver reports whether the game is settled
func (bg *BlackjackGame) IsOver() bool {
	return bg.over
}

// HandleHit draws a card for the player. A bust ends the game.
func (bg *BlackjackGame) HandleHit() flow.Transition {
	if !bg.CanHit() {
		return flow.Refuse(flow.Validation("You can't hit right now."))
	}

	bg.PlayerHand.AddCard(bg.Deck.Deal())
	if bg.PlayerHand.IsBusted() {
		bg.over = true
		return flow.Commit()
	}
	return flow.Next(flow.AwaitingPlayerAction)
}

// HandleStand plays out the dealer and ends the game
func (bg *BlackjackGame) HandleStand() flow.Transition {
	if !bg.CanStand() {
		return flow.Refuse(flow.Validation("You can't stand right now."))
	}

	bg.stood = true
	bg.playDealerHand()
	bg.over = true
	return flow.Commit()
}

// Forfeit ends the game as a loss of the whole bet
func (bg *BlackjackGame) Forfeit() Result {
	bg.over = true
	return Result{Outcome: DealerWin, Delta: -bg.Bet}
}

func (bg *BlackjackGame) playDealerHand() {
	for bg.DealerHand.GetValue() < utils.DealerStandValue {
		bg.DealerHand.AddCard(bg.Deck.Deal())
	}
}

// Settle computes the outcome and chip delta of a finished game
func (bg *BlackjackGame) Settle() Result {
	if !bg.over {
		return Result{Outcome: Undecided}
	}

	playerValue := bg.PlayerHand.GetValue()
	dealerValue := bg.DealerHand.GetValue()

	switch {
	case playerValue > utils.BlackjackTarget:
		return Result{Outcome: PlayerBust, Delta: -bg.Bet}
	case dealerValue > utils.BlackjackTarget:
		return Result{Outcome: DealerBust, Delta: bg.Bet}
	case bg.PlayerHand.IsBlackjack():
		return Result{Outcome: PlayerBlackjack, Delta: int64(math.Floor(float64(bg.Bet) * utils.BlackjackPayout))}
	case playerValue > dealerValue:
		return Result{Outcome: PlayerWin, Delta: bg.Bet}
	case dealerValue > playerValue:
		return Result{Outcome: DealerWin, Delta: -bg.Bet}
	default:
		return Result{Outcome: Push}
	}
}

// GameEmbed renders the table. The dealer's hole card stays hidden until the game is over.
func (bg *BlackjackGame) GameEmbed() *discordgo.MessageEmbed {
	dealerCards := "🎴 " + bg.DealerHand.Cards[1].String()
	dealerValue := "?"
	if bg.over {
		dealerCards = bg.DealerHand.String()
		dealerValue = fmt.Sprint(bg.DealerHand.GetValue())
	}

	return &discordgo.MessageEmbed{
		Title: "🃏 Blackjack Game",
		Color: utils.WinColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🎯 Your Hand", Value: fmt.Sprintf("%s (%d)", bg.PlayerHand, bg.PlayerHand.GetValue()), Inline: true},
			{Name: "🏠 Dealer Hand", Value: fmt.Sprintf("%s (%s)", dealerCards, dealerValue), Inline: true},
			{Name: "💰 Bet", Value: utils.FormatChips(bg.Bet), Inline: true},
		},
	}
}

// ResultEmbed renders the settled table with the outcome and the new balance
func (bg *BlackjackGame) ResultEmbed(result Result, balance int64) *discordgo.MessageEmbed {
	embed := bg.GameEmbed()
	embed.Fields = embed.Fields[:2]

	switch {
	case result.Delta > 0:
		embed.Color = utils.WinColor
	case result.Delta < 0:
		embed.Color = utils.LossColor
	default:
		embed.Color = utils.PushColor
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "🎉 Result", Value: result.Outcome.String()},
		&discordgo.MessageEmbedField{Name: "💰 Winnings", Value: utils.FormatSignedChips(result.Delta), Inline: true},
	)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("New chip balance: %d", balance)}
	return embed
}

// Buttons returns the hit and stand row for the game's current state
func (bg *BlackjackGame) Buttons(hitID, standID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		utils.CreateActionRow(
			utils.CreateButton(hitID, "Hit", discordgo.PrimaryButton, !bg.CanHit(), nil),
			utils.CreateButton(standID, "Stand", discordgo.SecondaryButton, !bg.CanStand(), nil),
		),
	}
}

// ValidateBet checks a wager against the player's balance
func ValidateBet(bet, chips int64) error {
	if bet <= 0 {
		return flow.Validation("❌ Your bet must be a positive number!")
	}
	if bet > chips {
		return flow.Validation(fmt.Sprintf("❌ You don't have enough chips! You have **%d** chips, but you're trying to bet **%d**. Please bet %d or less.", chips, bet, chips))
	}
	return nil
}

// RegisterBlackjackCommands returns the slash command definition for blackjack
func RegisterBlackjackCommands() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "blackjack",
		Description: "Play a game of blackjack",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "bet",
				Description: "The amount of money you want to bet",
				Required:    true,
			},
		},
	}
}

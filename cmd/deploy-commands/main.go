// Command deploy-commands publishes the bot's slash commands without starting the gateway.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/fatih/color"

	"pitwall-go/cogs"
	"pitwall-go/utils"
)

func main() {
	global := flag.Bool("global", false, "Publish globally even when DISCORD_GUILD_ID is set")
	dryRun := flag.Bool("dry-run", false, "List the commands without publishing them")
	flag.Parse()

	utils.LoadEnvFile()
	cfg, err := utils.LoadConfig()
	if err != nil {
		fail("Configuration error: %v", err)
	}
	if cfg.ClientID == "" {
		fail("DISCORD_CLIENT_ID is required to publish commands")
	}

	guildID := cfg.GuildID
	if *global {
		guildID = ""
	}
	scope := "globally"
	if guildID != "" {
		scope = "to guild " + guildID
	}

	commands := cogs.Commands()
	if *dryRun {
		for _, c := range commands {
			fmt.Printf("/%s  %s\n", color.CyanString(c.Name), c.Description)
		}
		return
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		fail("Failed to create Discord session: %v", err)
	}

	color.New(color.FgYellow).Printf("Started refreshing %d application (/) commands %s.\n", len(commands), scope)
	created, err := session.ApplicationCommandBulkOverwrite(cfg.ClientID, guildID, commands)
	if err != nil {
		fail("Failed to publish commands: %v", err)
	}
	for _, c := range created {
		fmt.Printf("  /%s (%s)\n", c.Name, c.ID)
	}
	color.New(color.FgGreen).Println("Successfully reloaded application (/) commands.")
}

func fail(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

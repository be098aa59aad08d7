package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/utils"
)

var Search = discord.SlashCommandCreate{
	Name:        "search",
	Description: "Find a scenario by (part of) its title",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "title",
			Description: "Part of the scenario title",
			Required:    true,
		},
	},
}

func SearchHandler(b *recordkeeper.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		query := e.SlashCommandInteractionData().String("title")

		scenarios, err := b.SearchService.SearchScenarios(ctx, query, 10)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Search failed.")
		}
		if len(scenarios) == 0 {
			return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("Nothing matches `%s`.", query))
		}

		lines := make([]string, 0, len(scenarios))
		for _, s := range scenarios {
			if s.Set != nil {
				lines = append(lines, fmt.Sprintf("**%s** %s (%s)", s.Code, s.Title, s.Set.Name))
			} else {
				lines = append(lines, fmt.Sprintf("**%s** %s", s.Code, s.Title))
			}
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("Scenarios matching `%s`", query),
				Description: utils.FormatCollection(lines),
				Color:       utils.InfoColor,
			}},
		})
	}
}

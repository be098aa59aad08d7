package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
	"github.com/erebor/recordkeeper/recordkeeper/utils"
)

var Commands = []discord.ApplicationCommandCreate{
	Quest,
	Checkout,
	Complete,
	Progress,
	Challenges,
	Conquer,
	CProgress,
	MyProgress,
	Hunt,
	HuntProgress,
	Gauntlet,
	Search,
	Event,
}

// requireActiveEvent resolves the active event or answers the interaction
// with the reason there is none. A nil event with a nil error means the
// response has already been sent.
func requireActiveEvent(ctx context.Context, b *recordkeeper.Bot, e *handler.CommandEvent) (*models.Event, error) {
	event, err := b.EventRepository.GetActive(ctx)
	if errors.Is(err, repositories.ErrNoActiveEvent) {
		return nil, utils.EH.CreateWarningEmbed(e, "No event is currently running.")
	}
	if err != nil {
		return nil, utils.EH.CreateErrorEmbed(e, "Failed to look up the active event.")
	}
	return event, nil
}

func intPtr(i int) *int {
	return &i
}

func scenarioLine(entry *models.EventScenario) string {
	if entry.Scenario == nil {
		return fmt.Sprintf("scenario #%d", entry.ScenarioID)
	}
	if entry.Scenario.Set != nil {
		return fmt.Sprintf("**%s** %s (%s)", entry.Scenario.Code, entry.Scenario.Title, entry.Scenario.Set.Name)
	}
	return fmt.Sprintf("**%s** %s", entry.Scenario.Code, entry.Scenario.Title)
}

func challengeLine(ch *models.Challenge) string {
	line := fmt.Sprintf("**%s** %s", ch.Code, ch.Name)
	if ch.Description != "" {
		line += ": " + ch.Description
	}
	return line
}

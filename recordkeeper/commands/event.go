package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
	"github.com/erebor/recordkeeper/recordkeeper/utils"
)

var Event = discord.SlashCommandCreate{
	Name:        "event",
	Description: "Manage game events",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "create",
			Description: "Create a new event",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "Event name",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "activate",
			Description: "Make an event the active one",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "Event name",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "archive",
			Description: "Close out the active event for good",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Add scenarios to the active event's roster",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "scenario",
					Description: "Scenario code to add",
					Required:    false,
				},
				discord.ApplicationCommandOptionBool{
					Name:        "all",
					Description: "Add every scenario not already on the roster",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "enroll-challenges",
			Description: "Enroll challenges for every scenario on the roster",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "days",
					Description: "Days until the new challenges go live",
					Required:    false,
					MinValue:    intPtr(0),
					MaxValue:    intPtr(365),
				},
			},
		},
	},
}

func EventHandler(b *recordkeeper.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		data := e.SlashCommandInteractionData()
		switch *data.SubCommandName {
		case "create":
			return eventCreate(ctx, b, e, data.String("name"))
		case "activate":
			return eventActivate(ctx, b, e, data.String("name"))
		case "archive":
			return eventArchive(ctx, b, e)
		case "add":
			return eventAdd(ctx, b, e)
		case "enroll-challenges":
			return eventEnrollChallenges(ctx, b, e)
		default:
			return utils.EH.CreateErrorEmbed(e, "Unknown subcommand.")
		}
	}
}

func eventCreate(ctx context.Context, b *recordkeeper.Bot, e *handler.CommandEvent, name string) error {
	event, err := b.EventRepository.Create(ctx, name)
	if errors.Is(err, repositories.ErrEventExists) {
		return utils.EH.CreateWarningEmbed(e, fmt.Sprintf("An event named **%s** already exists.", name))
	}
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to create the event.")
	}
	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
		"**%s** created. Add scenarios with `/event add`, then `/event activate` it.", event.Name))
}

func eventActivate(ctx context.Context, b *recordkeeper.Bot, e *handler.CommandEvent, name string) error {
	candidates, err := b.EventRepository.FindInactive(ctx)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to list events.")
	}

	for _, event := range candidates {
		if event.Name != name {
			continue
		}
		switch err := b.EventRepository.Activate(ctx, event.ID); {
		case errors.Is(err, repositories.ErrEventArchived):
			return utils.EH.CreateWarningEmbed(e, fmt.Sprintf("**%s** is archived and cannot come back.", name))
		case err != nil:
			return utils.EH.CreateErrorEmbed(e, "Failed to activate the event.")
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("**%s** is now the active event.", name))
	}

	return utils.EH.CreateWarningEmbed(e, fmt.Sprintf("No inactive event named **%s**.", name))
}

func eventArchive(ctx context.Context, b *recordkeeper.Bot, e *handler.CommandEvent) error {
	event, err := requireActiveEvent(ctx, b, e)
	if event == nil {
		return err
	}

	if err := b.EventRepository.Archive(ctx, event.ID); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to archive the event.")
	}

	// The snapshot upload is best effort; the archive itself already stands.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := b.ArchiveExporter.Export(ctx, event); err != nil {
			slog.Error("Failed to export event snapshot",
				slog.String("event", event.Name),
				slog.Any("error", err))
		}
	}()

	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("**%s** is archived. Well fought, everyone.", event.Name))
}

func eventAdd(ctx context.Context, b *recordkeeper.Bot, e *handler.CommandEvent) error {
	event, err := requireActiveEvent(ctx, b, e)
	if event == nil {
		return err
	}

	data := e.SlashCommandInteractionData()
	if code, ok := data.OptString("scenario"); ok {
		scenario, err := b.ScenarioRepository.GetByCode(ctx, code)
		if errors.Is(err, repositories.ErrScenarioNotFound) {
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("No scenario with code `%s`.", code))
		}
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to look up the scenario.")
		}

		added, err := b.RosterRepository.AddScenario(ctx, event.ID, scenario.ID)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to add the scenario.")
		}
		if !added {
			return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("**%s** was already on the roster.", scenario.Title))
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("**%s** added to %s.", scenario.Title, event.Name))
	}

	if all, ok := data.OptBool("all"); ok && all {
		added, err := b.RosterRepository.AddAllRemaining(ctx, event.ID)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fill the roster.")
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Added %d scenarios to %s.", added, event.Name))
	}

	// No option given: offer a set picker.
	sets, err := b.SetRepository.GetAll(ctx)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to list sets.")
	}
	if len(sets) == 0 {
		return utils.EH.CreateInfoEmbed(e, "No sets have been imported yet.")
	}

	// Discord caps select menus at 25 options.
	if len(sets) > 25 {
		sets = sets[:25]
	}
	options := make([]discord.StringSelectMenuOption, 0, len(sets))
	for _, set := range sets {
		options = append(options, discord.StringSelectMenuOption{
			Label: set.Name,
			Value: set.Name,
		})
	}

	return e.CreateMessage(discord.MessageCreate{
		Content: fmt.Sprintf("Pick a set to add to **%s**:", event.Name),
		Components: []discord.ContainerComponent{
			discord.NewActionRow(
				discord.NewStringSelectMenu("/set-picker", "Select a set", options...),
			),
		},
	})
}

// SetPickerHandler finishes the /event add set flow once a set is chosen.
func SetPickerHandler(b *recordkeeper.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		data, ok := e.Data.(discord.StringSelectMenuInteractionData)
		if !ok || len(data.Values) == 0 {
			return utils.EH.CreateEphemeralError(e, "Nothing was selected.")
		}
		name := data.Values[0]

		event, err := b.EventRepository.GetActive(ctx)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "No event is currently running.")
		}

		var setID int64
		sets, err := b.SetRepository.GetAll(ctx)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Failed to list sets.")
		}
		for _, set := range sets {
			if set.Name == name {
				setID = set.ID
				break
			}
		}
		if setID == 0 {
			return utils.EH.CreateEphemeralError(e, fmt.Sprintf("No set named %s.", name))
		}

		added, err := b.RosterRepository.AddSet(ctx, event.ID, setID)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Failed to add the set.")
		}

		return e.UpdateMessage(discord.MessageUpdate{
			Content:    utils.Ptr(fmt.Sprintf("Added %d scenarios from **%s** to **%s**.", added, name, event.Name)),
			Components: &[]discord.ContainerComponent{},
		})
	}
}

func eventEnrollChallenges(ctx context.Context, b *recordkeeper.Bot, e *handler.CommandEvent) error {
	event, err := requireActiveEvent(ctx, b, e)
	if event == nil {
		return err
	}

	activeDate := time.Now()
	if days, ok := e.SlashCommandInteractionData().OptInt("days"); ok {
		activeDate = activeDate.AddDate(0, 0, days)
	}

	enrolled, err := b.ChallengeEventRepository.EnrollForEvent(ctx, event.ID, activeDate)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to enroll challenges.")
	}
	if enrolled == 0 {
		return utils.EH.CreateInfoEmbed(e, "Nothing new to enroll.")
	}

	when := "now"
	if activeDate.After(time.Now().Add(time.Minute)) {
		when = fmt.Sprintf("<t:%d:D>", activeDate.Unix())
	}
	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
		"Enrolled %d challenges in %s, live %s.", enrolled, event.Name, when))
}

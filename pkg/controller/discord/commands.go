package discord

import "github.com/bwmarrin/discordgo"

// Commands returns the application command set. `argos sync-commands`
// registers it globally; the definitions and the handlers in this package
// must stay in step.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "request",
			Description: "File a security assistance request",
		},
		{
			Name:        "config",
			Description: "Manage the home server configuration",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set one or more configuration values",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "customer-role",
							Description: "Role allowed to file internal requests",
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "security-role",
							Description: "Role alerted on new requests",
						},
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "alert-channel",
							Description: "Channel where request alerts are posted",
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "manager-role",
							Description: "Role allowed to change this configuration",
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "blacklist-role",
							Description: "Role allowed to manage the blacklist",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show the current configuration",
				},
			},
		},
		{
			Name:        "setup",
			Description: "Manage this server's registration",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "channel",
					Description: "Register this server and designate this channel for requests",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "allow-role",
					Description: "Allow a role to file requests from this server",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to allow",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove-role",
					Description: "Remove a role from the allow list",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear-roles",
					Description: "Clear the allow list so any member can file requests",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Show this server's registration and active requests",
				},
			},
		},
		{
			Name:        "blacklist",
			Description: "Manage the customer server blacklist",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Block a server from filing requests",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "server-id",
							Description: "ID of the server to block",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "reason",
							Description: "Why the server is blocked",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Lift a server's blacklisting",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "server-id",
							Description: "ID of the server to unblock",
							Required:    true,
						},
					},
				},
			},
		},
	}
}

package setup

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/vadiminshakov/redbet/config"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		chatURL    string
		channel    string
		sender     string
		stakeStr   string
		listenAddr string
		dataDir    string
		enableUt   bool
		confirm    bool
	)

	// defaults
	channel = "spam"
	sender = config.DefaultSender
	stakeStr = strconv.Itoa(config.DefaultStake)
	listenAddr = ":8080"
	dataDir = "./wal"

	// step 1: welcome
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("REDBET CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Point the bot at a chat feed and set your table stakes.\n"))

	// chat feed
	fmt.Println(stepStyle.Render("STEP 1: CHAT FEED"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Chat WebSocket URL").
				Description("e.g. wss://example.com/chat").
				Value(&chatURL).
				Validate(validateFeedURL),
			huh.NewInput().
				Title("Channel").
				Value(&channel),
			huh.NewInput().
				Title("Croupier username").
				Description("Only messages from this sender settle wagers").
				Value(&sender),
		),
	).Run()
	if err != nil {
		return err
	}

	// stakes
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("REDBET CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: STAKES"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Default stake (bits)").
				Description("Used whenever a stake input cannot be parsed").
				Value(&stakeStr).
				Validate(validateStake),
			huh.NewConfirm().
				Title("Enable under-threshold ($ut) wagers?").
				Value(&enableUt),
		),
	).Run()
	if err != nil {
		return err
	}

	// daemon
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("REDBET CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: DAEMON"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Dashboard listen address").
				Value(&listenAddr),
			huh.NewInput().
				Title("Data directory").
				Description("WAL history and state files live here").
				Value(&dataDir),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("REDBET CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Feed: %s\nChannel: %s\nSender: %s\nDefault stake: %s\nUT wagers: %t\nListen: %s\nData dir: %s\n",
		chatURL, channel, sender, stakeStr, enableUt, listenAddr, dataDir,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	stake, _ := strconv.ParseInt(stakeStr, 10, 64)

	cfgTmp := config.ConfigTmp{
		ChatURL:      chatURL,
		Channel:      channel,
		Sender:       sender,
		DefaultStake: stake,
		ListenAddr:   listenAddr,
		DataDir:      dataDir,
		EnableUt:     enableUt,
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting bot...", filename)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func validateFeedURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("must be a valid url")
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("scheme must be ws or wss")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func validateStake(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}

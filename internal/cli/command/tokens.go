package command

import (
	"sort"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokfactory/internal/cli/output"
	"github.com/yndnr/tokfactory/pkg/tokfactory"
)

// TokensCommand returns the tokens subcommand group.
func TokensCommand() *cli.Command {
	return &cli.Command{
		Name:    "tokens",
		Aliases: []string{"tok"},
		Usage:   "Inspect registered tokens",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List tokens ordered by batch id",
				Action: tokensList,
			},
			{
				Name:  "show",
				Usage: "Show a token and its holders",
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "batch",
						Aliases:  []string{"b"},
						Usage:    "Batch id",
						Required: true,
					},
				},
				Action: tokensShow,
			},
		},
	}
}

type tokenView struct {
	BatchID   uint64 `json:"batch_id" yaml:"batch_id"`
	Address   string `json:"address" yaml:"address"`
	Name      string `json:"name" yaml:"name"`
	Symbol    string `json:"symbol" yaml:"symbol"`
	Supply    uint64 `json:"supply" yaml:"supply"`
	Holders   int    `json:"holders" yaml:"holders"`
	State     string `json:"state" yaml:"state"`
	ExpiresAt string `json:"expires_at" yaml:"expires_at"`
	Version   uint64 `json:"version" yaml:"version"`
}

func newTokenView(t *tokfactory.Token) (tokenView, *tokfactory.TokenState) {
	state := t.Snapshot()
	meta := state.Metadata
	return tokenView{
		BatchID:   uint64(meta.BatchID),
		Address:   string(meta.Address),
		Name:      meta.Name,
		Symbol:    meta.Symbol,
		Supply:    state.Supply,
		Holders:   len(state.Balances),
		State:     t.State().String(),
		ExpiresAt: meta.ExpiresAtTime().UTC().Format(time.RFC3339),
		Version:   state.Version,
	}, state
}

type tokenList []tokenView

func (l tokenList) Table() *output.Table {
	table := output.NewTable("BATCH", "ADDRESS", "NAME", "SYMBOL", "SUPPLY", "HOLDERS", "STATE", "EXPIRES")
	for _, v := range l {
		table.AddRow(
			strconv.FormatUint(v.BatchID, 10),
			v.Address,
			v.Name,
			v.Symbol,
			strconv.FormatUint(v.Supply, 10),
			strconv.Itoa(v.Holders),
			v.State,
			v.ExpiresAt,
		)
	}
	return table
}

type holderView struct {
	Owner   string `json:"owner" yaml:"owner"`
	Balance uint64 `json:"balance" yaml:"balance"`
}

type tokenDetail struct {
	Token    tokenView    `json:"token" yaml:"token"`
	Balances []holderView `json:"balances" yaml:"balances"`
}

func (d *tokenDetail) Table() *output.Table {
	table := output.NewTable("FIELD", "VALUE")
	v := d.Token
	table.AddRow("batch", strconv.FormatUint(v.BatchID, 10))
	table.AddRow("address", v.Address)
	table.AddRow("name", v.Name)
	table.AddRow("symbol", v.Symbol)
	table.AddRow("supply", strconv.FormatUint(v.Supply, 10))
	table.AddRow("state", v.State)
	table.AddRow("expires", v.ExpiresAt)
	table.AddRow("version", strconv.FormatUint(v.Version, 10))
	for _, h := range d.Balances {
		table.AddRow("balance["+h.Owner+"]", strconv.FormatUint(h.Balance, 10))
	}
	return table
}

func tokensList(c *cli.Context) error {
	f, err := openFactory(c)
	if err != nil {
		return err
	}
	defer f.Close()

	tokens, err := f.List(c.Context)
	if err != nil {
		return err
	}

	list := make(tokenList, 0, len(tokens))
	for _, t := range tokens {
		v, _ := newTokenView(t)
		list = append(list, v)
	}
	return render(c, list)
}

func tokensShow(c *cli.Context) error {
	f, err := openFactory(c)
	if err != nil {
		return err
	}
	defer f.Close()

	t, err := f.Lookup(c.Context, tokfactory.BatchID(c.Uint64("batch")))
	if err != nil {
		return err
	}

	v, state := newTokenView(t)
	detail := &tokenDetail{Token: v, Balances: make([]holderView, 0, len(state.Balances))}
	for owner, bal := range state.Balances {
		detail.Balances = append(detail.Balances, holderView{Owner: string(owner), Balance: bal})
	}
	sort.Slice(detail.Balances, func(i, j int) bool {
		return detail.Balances[i].Owner < detail.Balances[j].Owner
	})
	return render(c, detail)
}

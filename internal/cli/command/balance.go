package command

import (
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokfactory/internal/cli/output"
	"github.com/yndnr/tokfactory/pkg/tokfactory"
)

// BalanceCommand returns the balance command.
func BalanceCommand() *cli.Command {
	return &cli.Command{
		Name:  "balance",
		Usage: "Show an owner's balance of a batch token",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:     "batch",
				Aliases:  []string{"b"},
				Usage:    "Batch id",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "owner",
				Usage:    "Owner address",
				Required: true,
			},
		},
		Action: balanceShow,
	}
}

type balanceView struct {
	BatchID uint64 `json:"batch_id" yaml:"batch_id"`
	Address string `json:"address" yaml:"address"`
	Owner   string `json:"owner" yaml:"owner"`
	Balance uint64 `json:"balance" yaml:"balance"`
}

func (v *balanceView) Table() *output.Table {
	table := output.NewTable("BATCH", "ADDRESS", "OWNER", "BALANCE")
	table.AddRow(strconv.FormatUint(v.BatchID, 10), v.Address, v.Owner, strconv.FormatUint(v.Balance, 10))
	return table
}

func balanceShow(c *cli.Context) error {
	f, err := openFactory(c)
	if err != nil {
		return err
	}
	defer f.Close()

	batch := tokfactory.BatchID(c.Uint64("batch"))
	owner := tokfactory.Address(c.String("owner"))

	addr, err := f.GetTokenAddress(c.Context, batch)
	if err != nil {
		return err
	}
	bal, err := f.BalanceOf(c.Context, addr, owner)
	if err != nil {
		return err
	}

	return render(c, &balanceView{
		BatchID: uint64(batch),
		Address: string(addr),
		Owner:   string(owner),
		Balance: bal,
	})
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokenviz/bubblegraph/pkg/mapdata"
)

// chainsCommand creates the chains command for listing supported networks.
func (c *CLI) chainsCommand() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "chains",
		Short: "List supported blockchain networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pick {
				chain, err := pickChain()
				if err != nil {
					return err
				}
				fmt.Println(chain)
				return nil
			}
			for _, chain := range mapdata.SupportedChains() {
				printKeyValue(chain, mapdata.ChainLabel(chain))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "pick a chain interactively and print it")

	return cmd
}

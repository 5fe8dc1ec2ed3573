package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/landfolio/cfd-api/internal/models"
)

// ContractFSM wraps a contract with its servicing state machine. Transitions
// are driven by recorded servicing events, never computed from the payment
// stream; repossessed is terminal.
type ContractFSM struct {
	contract *models.Contract
	fsm      *fsm.FSM
}

// NewContractFSM creates a new contract state machine
func NewContractFSM(contract *models.Contract) *ContractFSM {
	cffsm := &ContractFSM{
		contract: contract,
	}

	cffsm.fsm = fsm.NewFSM(
		contract.Status,
		fsm.Events{
			// active → paid_off
			{Name: "pay_off", Src: []string{models.ContractStatusActive}, Dst: models.ContractStatusPaidOff},

			// active → default
			{Name: "default", Src: []string{models.ContractStatusActive}, Dst: models.ContractStatusDefault},

			// default → repossessed (terminal)
			{Name: "repossess", Src: []string{models.ContractStatusDefault}, Dst: models.ContractStatusRepossessed},

			// default → active (cure)
			{Name: "reinstate", Src: []string{models.ContractStatusDefault}, Dst: models.ContractStatusActive},
		},
		fsm.Callbacks{},
	)

	return cffsm
}

// PayOff transitions contract to paid_off state
func (c *ContractFSM) PayOff(ctx context.Context) error {
	if !c.contract.MayPayOff() {
		return fmt.Errorf("contract cannot be paid off in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "pay_off"); err != nil {
		return fmt.Errorf("failed to pay off contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Default transitions contract to default state
func (c *ContractFSM) Default(ctx context.Context) error {
	if !c.contract.MayDefault() {
		return fmt.Errorf("contract cannot default in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "default"); err != nil {
		return fmt.Errorf("failed to default contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Repossess transitions a defaulted contract to repossessed state
func (c *ContractFSM) Repossess(ctx context.Context) error {
	if !c.contract.MayRepossess() {
		return fmt.Errorf("contract cannot be repossessed in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "repossess"); err != nil {
		return fmt.Errorf("failed to repossess contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Reinstate transitions a defaulted contract back to active
func (c *ContractFSM) Reinstate(ctx context.Context) error {
	if !c.contract.MayReinstate() {
		return fmt.Errorf("contract cannot be reinstated in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "reinstate"); err != nil {
		return fmt.Errorf("failed to reinstate contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Current returns the current state
func (c *ContractFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *ContractFSM) Can(event string) bool {
	return c.fsm.Can(event)
}

package core

import "context"

// Uninstall undoes the install steps, newest first. The droplets survive
// unless destroyDroplets is set, in which case resetting the machines is
// skipped since they are about to go away.
func (i *Installer) Uninstall(ctx context.Context, destroyDroplets bool) error {
	for idx := len(i.steps) - 1; idx >= 0; idx-- {
		switch i.steps[idx].(type) {
		case *dropletStep:
			if !destroyDroplets {
				continue
			}
		case *provisionStep:
			if destroyDroplets {
				continue
			}
		}
		err := i.steps[idx].uninstall(ctx)
		if err != nil {
			i.msg.Error("uninstall failed: %v", err)
			return err
		}
	}
	return nil
}

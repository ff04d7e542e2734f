package node

type Package interface {
	install() error
	uninstall() error
}

type docker struct {
	*Node
}

func (d *docker) install() error {
	d.log.Printf("install package <docker>")
	if err := d.remote.Install(dockerPackages...); err != nil {
		d.log.Errorf("install package <docker> fail")
		return err
	}
	out, err := d.remote.Run(dockerVersionCommand)
	if err != nil {
		return err
	}
	d.log.Printf("%s", trimOutput(out))
	if err := d.sudo(enableDockerCommand); err != nil {
		return err
	}
	if err := d.sudo(containerdCommands...); err != nil {
		d.log.Errorf("fail to configure containerd: %v", err)
		return err
	}
	d.log.Printf("install package <docker> success")
	return nil
}

func (d *docker) uninstall() error {
	d.log.Printf("uninstall package <docker>")
	return d.remote.Uninstall(dockerPackages...)
}

type kubernetes struct {
	*Node
}

func (k *kubernetes) install() error {
	k.log.Printf("install package <kubernetes %s>", k.settings.Version)
	if err := k.remote.Install(transportPackages...); err != nil {
		return err
	}
	if err := k.sudo(repositoryCommands(k.settings.Version)...); err != nil {
		k.log.Errorf("fail to add kubernetes apt repository: %v", err)
		return err
	}
	if err := k.remote.Install(kubernetesPackages...); err != nil {
		k.log.Errorf("install package <kubernetes> fail")
		return err
	}
	k.log.Printf("install package <kubernetes %s> success", k.settings.Version)
	return nil
}

func (k *kubernetes) uninstall() error {
	k.log.Printf("uninstall package <kubernetes>")
	if err := k.Reset(); err != nil {
		k.log.Warnf("kubeadm reset fail: %v", err)
	}
	return k.remote.Uninstall(kubernetesPackages...)
}

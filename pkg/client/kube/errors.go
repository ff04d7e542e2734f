package kube

import "errors"

var (
	ErrNodesNotReady = errors.New("nodes not ready")
	ErrNoCluster     = errors.New("kubeconfig has no cluster")
)

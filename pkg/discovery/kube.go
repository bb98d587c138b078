/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package discovery

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/carverauto/appradar/pkg/logger"
	"github.com/carverauto/appradar/pkg/models"
)

// PlatformClient is the slice of the Kubernetes API the coordinator reads.
type PlatformClient interface {
	Services(ctx context.Context, namespace string) ([]corev1.Service, error)
	Pods(ctx context.Context, namespace string) ([]corev1.Pod, error)
}

// ConnectedClient reads services and pods through a live clientset.
type ConnectedClient struct {
	clientset kubernetes.Interface
}

// NewConnectedClient wraps an existing clientset, used directly by tests
// with the fake clientset.
func NewConnectedClient(clientset kubernetes.Interface) *ConnectedClient {
	return &ConnectedClient{clientset: clientset}
}

func (c *ConnectedClient) Services(ctx context.Context, namespace string) ([]corev1.Service, error) {
	list, err := c.clientset.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}

	return list.Items, nil
}

func (c *ConnectedClient) Pods(ctx context.Context, namespace string) ([]corev1.Pod, error) {
	list, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing pods: %w", err)
	}

	return list.Items, nil
}

// DisconnectedClient is the stand-in used when no platform is reachable.
// Every listing is empty, so discovery cycles are harmless no-ops.
type DisconnectedClient struct{}

func (DisconnectedClient) Services(context.Context, string) ([]corev1.Service, error) {
	return nil, nil
}

func (DisconnectedClient) Pods(context.Context, string) ([]corev1.Pod, error) {
	return nil, nil
}

// buildRestConfig creates a Kubernetes REST config from kubeconfig or
// in-cluster credentials.
func buildRestConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig != "" {
		return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			&clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig},
			&clientcmd.ConfigOverrides{},
		).ClientConfig()
	}

	return rest.InClusterConfig()
}

// NewPlatformClient connects to the platform described by config. When the
// platform is unreachable and not mandatory, it degrades to a
// DisconnectedClient instead of failing.
func NewPlatformClient(config models.DiscoveryConfig, log logger.Logger) (PlatformClient, error) {
	if !config.Enabled {
		return DisconnectedClient{}, nil
	}

	restConfig, err := buildRestConfig(config.Kubeconfig)
	if err == nil {
		var clientset *kubernetes.Clientset

		clientset, err = kubernetes.NewForConfig(restConfig)
		if err == nil {
			return NewConnectedClient(clientset), nil
		}
	}

	if config.Mandatory {
		return nil, fmt.Errorf("connecting to platform: %w", err)
	}

	log.Warn().Err(err).Msg("Platform unreachable, continuing without platform discovery")

	return DisconnectedClient{}, nil
}

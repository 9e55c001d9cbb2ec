package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	v1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Adding the following variables, so that the code can be tested
var (
	inClusterConfig      = rest.InClusterConfig
	buildConfigFromFlags = clientcmd.BuildConfigFromFlags
	newForConfig         = kubernetes.NewForConfig
)

// documentKey is the Secret data key holding the serialized document.
const documentKey = "document"

// modifiedAtAnnotation records the last write time on the Secret.
const modifiedAtAnnotation = "vault.credential/modified-at"

// KubernetesStore keeps each document in an Opaque Secret in one namespace.
// The document path maps to the Secret name.
type KubernetesStore struct {
	ClientSet kubernetes.Interface
	Namespace string
}

// NewKubernetesStore creates a store backed by the cluster the process runs
// in. It first tries the in-cluster config, then falls back to the local
// kubeconfig.
func NewKubernetesStore(namespace string) (*KubernetesStore, error) {
	config, err := inClusterConfig()
	if err != nil {
		kubeconfig := filepath.Join(os.Getenv("HOME"), ".kube", "config")
		config, err = buildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}
	}

	clientset, err := newForConfig(config)
	if err != nil {
		return nil, err
	}

	return &KubernetesStore{ClientSet: clientset, Namespace: namespace}, nil
}

// NewKubernetesStoreWithConfig uses an injected rest config, for tests.
func NewKubernetesStoreWithConfig(config *rest.Config, namespace string) (*KubernetesStore, error) {
	clientset, err := newForConfig(config)
	if err != nil {
		return nil, err
	}
	return &KubernetesStore{ClientSet: clientset, Namespace: namespace}, nil
}

// secretName maps a document path to a valid Secret name.
func secretName(path string) string {
	name := strings.ToLower(path)
	name = strings.TrimSuffix(name, ".json")
	replacer := strings.NewReplacer("/", "-", "_", "-", ".", "-")
	return replacer.Replace(name)
}

// Read fetches the document from its Secret.
func (s *KubernetesStore) Read(ctx context.Context, path string) (string, string, error) {
	secret, err := s.ClientSet.CoreV1().Secrets(s.Namespace).Get(ctx, secretName(path), metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "", "", ErrNotFound
		}
		return "", "", fmt.Errorf("failed to get secret for %q: %w", path, err)
	}

	content, ok := secret.Data[documentKey]
	if !ok {
		return "", "", ErrNotFound
	}
	return string(content), secret.Annotations[modifiedAtAnnotation], nil
}

// Write stores the document, creating the Secret on first write and updating
// it afterwards. The API server applies each operation atomically.
func (s *KubernetesStore) Write(ctx context.Context, path, content string) error {
	name := secretName(path)
	secrets := s.ClientSet.CoreV1().Secrets(s.Namespace)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	existing, err := secrets.Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		secret := &v1.Secret{
			ObjectMeta: metav1.ObjectMeta{
				Name:        name,
				Annotations: map[string]string{modifiedAtAnnotation: now},
			},
			StringData: map[string]string{documentKey: content},
			Type:       v1.SecretTypeOpaque,
		}
		if _, err := secrets.Create(ctx, secret, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create secret for %q: %w", path, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get secret for %q: %w", path, err)
	}

	existing.StringData = map[string]string{documentKey: content}
	if existing.Annotations == nil {
		existing.Annotations = map[string]string{}
	}
	existing.Annotations[modifiedAtAnnotation] = now

	if _, err := secrets.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update secret for %q: %w", path, err)
	}
	return nil
}

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

package push

import (
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// KeyPair is a base64url encoded VAPID key pair.
type KeyPair struct {
	PublicKey  string `json:"vapid_public_key"`
	PrivateKey string `json:"vapid_private_key"`
}

// GenerateKeyPair creates a fresh VAPID key pair for the push config.
func GenerateKeyPair() (*KeyPair, error) {
	private, public, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to generate VAPID keys: %w", err)
	}

	return &KeyPair{PublicKey: public, PrivateKey: private}, nil
}

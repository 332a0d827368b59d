// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package store

// Default configuration values.
const (
	DefaultStoragePath   = "./roadtrees"
	DefaultCacheCost     = 64 << 20 // 64MB, counted as the encoded size of each cached tree
	DefaultCacheCounters = 1_000
)

// Config configures a Store.
type Config struct {
	StoragePath   string
	CacheCost     int64
	CacheCounters int64
}

// Option is a function that modifies a configuration.
type Option func(*Config)

// DefaultConfig is the store's default configuration.
var DefaultConfig = Config{
	StoragePath:   DefaultStoragePath,
	CacheCost:     DefaultCacheCost,
	CacheCounters: DefaultCacheCounters,
}

// WithStoragePath specifies the path of the on-disk badger database.
func WithStoragePath(path string) Option {
	return func(config *Config) {
		config.StoragePath = path
	}
}

// WithCacheCost specifies the maximum total cost (in bytes of encoded tree
// size) the in-memory decode cache may hold.
func WithCacheCost(cost int64) Option {
	return func(config *Config) {
		config.CacheCost = cost
	}
}

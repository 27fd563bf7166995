package main

import (
	"github.com/aretw0/leadchat/internal/cli"
	"github.com/spf13/cobra"
)

func addStorageFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", cli.BackendFile, "Ledger backend (memory, file, sqlite, redis)")
	cmd.Flags().String("backend-path", "", "Ledger file or database path")
	cmd.Flags().String("redis-addr", "", "Redis address for the redis backend")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database number")
	cmd.Flags().String("encryption-key", "", "Hex AES key for encrypting the ledger at rest")
}

func storageOptions(cmd *cobra.Command) cli.StorageOptions {
	backend, _ := cmd.Flags().GetString("backend")
	path, _ := cmd.Flags().GetString("backend-path")
	addr, _ := cmd.Flags().GetString("redis-addr")
	password, _ := cmd.Flags().GetString("redis-password")
	db, _ := cmd.Flags().GetInt("redis-db")
	key, _ := cmd.Flags().GetString("encryption-key")
	return cli.StorageOptions{
		Backend:       backend,
		Path:          path,
		RedisAddr:     addr,
		RedisPassword: password,
		RedisDB:       db,
		EncryptionKey: key,
	}
}

func globalOptions(cmd *cobra.Command) (string, bool) {
	config, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	return config, debug
}

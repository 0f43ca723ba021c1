//go:build ignore

// generate_hash.go — утилита для генерации Argon2id хеша пароля.
// Запуск: go run scripts/generate_hash.go ваш_пароль
//
// Хеш можно записать прямо в users.password, например чтобы сбросить пароль вручную.
package main

import (
	"fmt"
	"os"

	"serotonyl.ru/newsboard/internal/features/auth"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Использование: go run scripts/generate_hash.go <пароль>")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		fmt.Printf("Ошибка хеширования: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Argon2id хеш:")
	fmt.Println(hash)
	fmt.Println()
	fmt.Println("SQL:")
	fmt.Printf("UPDATE users SET password = '%s' WHERE username = '<username>';\n", hash)
}

// Package seed initializes an empty store with the demo accounts and
// question bank so the application is usable out of the box.
package seed

import (
	"context"

	"smartquiz/internal/domain"
)

// Store is the subset of the server store the seeder needs.
type Store interface {
	ListUsers(ctx context.Context) ([]domain.Identity, error)
	CreateUser(ctx context.Context, username, password, displayName string, role domain.Role) (domain.Identity, error)
	CountQuestions(ctx context.Context) (int, error)
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
}

// Apply seeds demo users and questions, skipping whichever already exist.
func Apply(ctx context.Context, store Store) error {
	users, err := store.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		for _, u := range Users() {
			if _, err := store.CreateUser(ctx, u.Username, u.Password, u.DisplayName, u.Role); err != nil {
				return err
			}
		}
	}
	count, err := store.CountQuestions(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		for _, q := range Questions() {
			if _, err := store.CreateQuestion(ctx, q); err != nil {
				return err
			}
		}
	}
	return nil
}

// User is a seed account with its plaintext demo password.
type User struct {
	Username    string
	Password    string
	DisplayName string
	Role        domain.Role
}

// Users returns the default accounts: one admin and two students.
func Users() []User {
	return []User{
		{Username: "admin", Password: "admin123", DisplayName: "Administrator", Role: domain.RoleAdmin},
		{Username: "student1", Password: "student123", DisplayName: "John Doe", Role: domain.RoleStudent},
		{Username: "student2", Password: "pass123", DisplayName: "Jane Smith", Role: domain.RoleStudent},
	}
}

// Questions returns the seed question bank.
func Questions() []domain.Question {
	data := [][6]string{
		{"What is the capital of France?", "London", "Berlin", "Paris", "Madrid", "Paris"},
		{"Which planet is known as the Red Planet?", "Venus", "Mars", "Jupiter", "Saturn", "Mars"},
		{"What is 2 + 2?", "3", "4", "5", "6", "4"},
		{"Who painted the Mona Lisa?", "Van Gogh", "Picasso", "Da Vinci", "Monet", "Da Vinci"},
		{"What is the largest ocean on Earth?", "Atlantic", "Indian", "Arctic", "Pacific", "Pacific"},
		{"In which year did World War II end?", "1944", "1945", "1946", "1947", "1945"},
		{"What is the chemical symbol for gold?", "Go", "Gd", "Au", "Ag", "Au"},
		{"Which country is home to Machu Picchu?", "Chile", "Peru", "Bolivia", "Ecuador", "Peru"},
		{"What is the smallest country in the world?", "Monaco", "Vatican City", "Nauru", "San Marino", "Vatican City"},
		{"Who wrote 'Romeo and Juliet'?", "Charles Dickens", "William Shakespeare", "Jane Austen", "Mark Twain", "William Shakespeare"},
		{"What is the hardest natural substance on Earth?", "Gold", "Iron", "Diamond", "Platinum", "Diamond"},
		{"Which gas makes up most of the Earth's atmosphere?", "Oxygen", "Carbon Dioxide", "Nitrogen", "Hydrogen", "Nitrogen"},
		{"What is the currency of Japan?", "Yuan", "Won", "Yen", "Rupiah", "Yen"},
		{"What is the fastest land animal?", "Lion", "Horse", "Cheetah", "Antelope", "Cheetah"},
		{"In which continent is the Sahara Desert?", "Asia", "Africa", "Australia", "South America", "Africa"},
		{"What does 'WWW' stand for?", "World Wide Web", "World War Won", "We Will Win", "World Water Works", "World Wide Web"},
		{"What is the largest mammal in the world?", "Elephant", "Blue Whale", "Giraffe", "Hippopotamus", "Blue Whale"},
		{"What is the boiling point of water in Celsius?", "90°C", "95°C", "100°C", "105°C", "100°C"},
		{"Which metal is liquid at room temperature?", "Lead", "Mercury", "Tin", "Zinc", "Mercury"},
		{"Which river is the longest in the world?", "Amazon", "Nile", "Mississippi", "Yangtze", "Nile"},
	}
	questions := make([]domain.Question, 0, len(data))
	for _, row := range data {
		questions = append(questions, domain.Question{
			Prompt:        row[0],
			Options:       []string{row[1], row[2], row[3], row[4]},
			CorrectOption: row[5],
		})
	}
	return questions
}

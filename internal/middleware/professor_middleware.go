package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ProfessorHeader carries the professor identity set by the authenticating gateway.
const ProfessorHeader = "X-Professor-ID"

const professorKey = "professor_id"

// RequireProfessor rejects requests without a valid professor identity.
func RequireProfessor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Get(ProfessorHeader))
		if err != nil || id == uuid.Nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Identifiant professeur manquant ou invalide",
			})
		}
		c.Locals(professorKey, id)
		return c.Next()
	}
}

// ProfessorID returns the identity stored by RequireProfessor.
func ProfessorID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(professorKey).(uuid.UUID)
	return id
}

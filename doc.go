// Package recetario is the backend for a cooking competition platform:
// seasons (temporadas), the recipes submitted during each season, and the
// accounts of the people who cook and judge them.
//
// Account lifecycle:
//   - Registration hashes credentials with bcrypt and issues a single-use
//     email verification token. Tokens are consumed with one conditional
//     update, so a replayed link can never verify twice.
//   - Password recovery mirrors the same single-use token discipline and
//     always answers with a generic message, so the endpoint never reveals
//     whether an email is registered.
//
// Catalog:
//   - Every recipe belongs to exactly one season. Deleting a season removes
//     its recipes in the same transaction and reports how many went with it.
//   - Listings filter by creator, creator role, season, and case-insensitive
//     ingredient substring.
package recetario

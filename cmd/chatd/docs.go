package main

// General API documentation for swaggo.
//
// @title           chatd API
// @version         1.0
// @description     OpenAI-compatible chat completion API over a local model.
//
// @contact.name   chatd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http

package infrastructure

var NewLogger = newLogger

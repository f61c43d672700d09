package main

import "sync"

// memoryClipboard keeps copied content for the lifetime of the process.
type memoryClipboard struct {
	mu   sync.Mutex
	text string
	html string
}

func (c *memoryClipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

func (c *memoryClipboard) WriteText(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = s
	return nil
}

func (c *memoryClipboard) ReadHTML() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.html, nil
}

func (c *memoryClipboard) WriteHTML(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.html = s
	return nil
}
